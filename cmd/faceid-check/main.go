package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"github.com/abihf/faceid/config"
	"github.com/abihf/faceid/protocol"
)

func main() {
	conf := config.Load()
	device := flag.Int("device", -1, "camera index, -1 for the daemon default")
	train := flag.Bool("train", false, "ask the daemon to retrain instead of identifying")
	status := flag.Bool("status", false, "print the daemon camera and model state")
	flag.Parse()

	conn, err := net.Dial("unix", conf.Socket)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	switch {
	case *train:
		err = protocol.WriteReq(conn, protocol.ActionTrain, nil)
	case *status:
		err = protocol.WriteReq(conn, protocol.ActionStatus, nil)
	default:
		err = protocol.WriteIdentifyReq(conn, "check", *device)
	}
	if err != nil {
		log.Fatal(err)
	}

	res, err := protocol.ReadRes(conn)
	if err != nil {
		log.Fatal(err)
	}

	if res.Status != protocol.StatusSuccess {
		fmt.Println("Result", res.Status, res.Error)
		os.Exit(1)
	}
	fmt.Println("Result", res.Status)
	for k, v := range res.Extras {
		fmt.Printf("  %s: %s\n", k, v)
	}
}
