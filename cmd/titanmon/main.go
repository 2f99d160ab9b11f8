package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/titan.go/pkg/config"
	"github.com/robotalks/titan.go/pkg/driver/mqtt"
	"github.com/robotalks/titan.go/pkg/l0/comm"
	"github.com/robotalks/titan.go/pkg/l0/wire"
)

var (
	mqttURL = "mqtt://localhost:1883/titan/"
)

func init() {
	if val := os.Getenv("TITAN_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func describe(payload []byte) string {
	switch {
	case len(payload) == len(comm.Ack) && payload[0] == comm.AckByte:
		return "ACK"
	case len(payload) == len(comm.Nak) && payload[0] == comm.NakByte:
		return "NAK"
	}
	pkg, err := wire.Decode(payload)
	if err != nil {
		return "bad frame: " + err.Error()
	}
	return pkg.String()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL, config.ClientID("titanmon"))
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		log.Printf("%s: %s", topic, describe(payload))
	}))
	<-(chan struct{})(nil)
}
