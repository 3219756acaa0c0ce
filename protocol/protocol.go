// Package protocol is the JSON request/response protocol spoken over
// the faceidd unix socket. Each message is one JSON document.
package protocol

import (
	"encoding/json"
	"io"
	"strconv"
)

type Action string

const (
	ActionIdentify Action = "IDENTIFY"
	ActionTrain    Action = "TRAIN"
	ActionStatus   Action = "STATUS"
)

type Req struct {
	Action Action            `json:"action"`
	Params map[string]string `json:"params"`
}

type IdentifyReq struct {
	Client string
	Device int
}

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

type Res struct {
	Status Status            `json:"status"`
	Error  string            `json:"error,omitempty"`
	Extras map[string]string `json:"extras,omitempty"`
}

// ReqReader reads consecutive requests from one connection. It keeps a
// single decoder so bytes buffered past one request are not lost.
type ReqReader struct {
	dec *json.Decoder
}

func NewReqReader(r io.Reader) *ReqReader {
	return &ReqReader{dec: json.NewDecoder(r)}
}

func (r *ReqReader) Next() (*Req, error) {
	var req Req
	err := r.dec.Decode(&req)
	return &req, err
}

// ReadReq reads a single request.
func ReadReq(r io.Reader) (*Req, error) {
	return NewReqReader(r).Next()
}

func ReadRes(r io.Reader) (*Res, error) {
	var res Res
	err := json.NewDecoder(r).Decode(&res)
	return &res, err
}

// ToIdentifyReq reads the identify parameters. A missing or invalid
// device is -1, meaning the daemon's configured camera.
func ToIdentifyReq(req *Req) *IdentifyReq {
	device, err := strconv.Atoi(req.Params["device"])
	if err != nil {
		device = -1
	}
	return &IdentifyReq{
		Client: req.Params["client"],
		Device: device,
	}
}

func WriteReq(w io.Writer, action Action, params map[string]string) error {
	return json.NewEncoder(w).Encode(&Req{Action: action, Params: params})
}

func WriteIdentifyReq(w io.Writer, client string, device int) error {
	params := map[string]string{"client": client}
	if device >= 0 {
		params["device"] = strconv.Itoa(device)
	}
	return WriteReq(w, ActionIdentify, params)
}

func WriteSuccessRes(w io.Writer, extras map[string]string) error {
	res := Res{
		Status: StatusSuccess,
		Extras: extras,
	}
	return json.NewEncoder(w).Encode(&res)
}

func WriteErrorRes(w io.Writer, err error) error {
	res := Res{
		Status: StatusError,
		Error:  err.Error(),
	}
	return json.NewEncoder(w).Encode(&res)
}
