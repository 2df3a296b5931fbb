// Command diseqc_logger records the status stream of a 'diseqc serve'
// instance into InfluxDB.
package main

import (
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/w1xm/diseqc_interface/frontend/remote"
)

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load(".env")

	client := influxdb2.NewClient(getenv("INFLUX_SERVER", "http://localhost:9999"), os.Getenv("INFLUX_TOKEN"))
	defer client.Close()
	// Get non-blocking write client
	writeApi := client.WriteApi("w1xm", getenv("INFLUX_BUCKET", "diseqc"))
	defer writeApi.Close()
	errorsCh := writeApi.Errors()
	go func() {
		for err := range errorsCh {
			log.Printf("write error: %v", err)
		}
	}()

	url := getenv("DISEQC_ADDRESS", "ws://localhost:8502/api/ws")
	password := os.Getenv("DISEQC_PASSWORD")
	for {
		if err := logData(writeApi, url, password); err != nil {
			log.Print(err)
		}
		time.Sleep(1 * time.Second)
	}
}

// statusFields converts a status into point fields. Optional strings are
// left out while empty.
func statusFields(status remote.Status) map[string]interface{} {
	fields := map[string]interface{}{
		"tone":         status.Tone,
		"voltage":      status.Voltage,
		"requests":     int64(status.Requests),
		"errors":       int64(status.Errors),
		"last_request": status.LastRequest,
	}
	for k, v := range map[string]string{
		"last_error":   status.LastError,
		"last_command": status.LastCommand,
		"last_reply":   status.LastReply,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}

func logData(writeApi api.WriteApi, url, password string) error {
	defer writeApi.Flush()
	header := http.Header{}
	if password != "" {
		header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("diseqc:"+password)))
	}
	var dialer websocket.Dialer
	conn, _, err := dialer.Dial(url, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("connected to %s", url)
	for {
		var status remote.Status
		if err := conn.ReadJSON(&status); err != nil {
			return err
		}
		ts := status.Time
		if ts.IsZero() {
			ts = time.Now()
		}
		p := influxdb2.NewPoint("diseqc.frontend",
			nil,
			statusFields(status),
			ts,
		)
		// write asynchronously
		writeApi.WritePoint(p)
	}
}
