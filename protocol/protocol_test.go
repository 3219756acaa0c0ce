package protocol

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/pkg/errors"
)

func TestIdentifyOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		req, err := ReadReq(bufio.NewReader(server))
		if err != nil {
			done <- err
			return
		}
		if req.Action != ActionIdentify {
			done <- errors.Errorf("action %q", req.Action)
			return
		}
		id := ToIdentifyReq(req)
		if id.Client != "check" || id.Device != 2 {
			done <- errors.Errorf("unexpected request %+v", id)
			return
		}
		done <- WriteSuccessRes(server, map[string]string{"label": "bob", "score": "0.75"})
	}()

	if err := WriteIdentifyReq(client, "check", 2); err != nil {
		t.Fatalf("WriteIdentifyReq: %v", err)
	}
	res, err := ReadRes(client)
	if err != nil {
		t.Fatalf("ReadRes: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server: %v", err)
	}

	if res.Status != StatusSuccess {
		t.Errorf("status: got %s, want SUCCESS", res.Status)
	}
	if res.Extras["label"] != "bob" {
		t.Errorf("label: got %q, want bob", res.Extras["label"])
	}
}

func TestToIdentifyReq_DefaultDevice(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   int
	}{
		{"missing", map[string]string{}, -1},
		{"invalid", map[string]string{"device": "front"}, -1},
		{"given", map[string]string{"device": "0"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ToIdentifyReq(&Req{Action: ActionIdentify, Params: tc.params})
			if got.Device != tc.want {
				t.Errorf("device: got %d, want %d", got.Device, tc.want)
			}
		})
	}
}

func TestWriteErrorRes(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteErrorRes(&buf, errors.New("no match")); err != nil {
		t.Fatal(err)
	}
	res, err := ReadRes(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusError || res.Error != "no match" {
		t.Errorf("got %+v", res)
	}
}

func TestReqReader_Pipelined(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteIdentifyReq(&buf, "check", 1); err != nil {
		t.Fatal(err)
	}
	if err := WriteReq(&buf, ActionStatus, nil); err != nil {
		t.Fatal(err)
	}
	if err := WriteReq(&buf, ActionTrain, nil); err != nil {
		t.Fatal(err)
	}

	r := NewReqReader(&buf)
	for _, want := range []Action{ActionIdentify, ActionStatus, ActionTrain} {
		req, err := r.Next()
		if err != nil {
			t.Fatalf("reading %s: %v", want, err)
		}
		if req.Action != want {
			t.Errorf("action: got %s, want %s", req.Action, want)
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("after the last request: got %v, want EOF", err)
	}
}
