package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"maitred/config"
	"maitred/robot"
)

// mqttcreds fetches time-limited broker credentials from the vendor control
// API and prints them, or writes them to a file for the gateway to pick up.
// AppKey and AppToken come from the config file or the APPKEY / APPTOKEN
// environment variables.
func main() {
	configPath := flag.String("config", "maitred.yaml", "path to config file")
	outPath := flag.String("o", "", "write credentials JSON to file instead of stdout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Robot.ControlAPI.AppKey == "" || cfg.Robot.ControlAPI.AppToken == "" {
		log.Fatalf("appkey/apptoken not set (config or APPKEY/APPTOKEN env)")
	}

	client := robot.NewClient(&cfg.Robot.ControlAPI)
	creds, err := client.FetchBrokerCredentials()
	if err != nil {
		log.Fatalf("fetch broker credentials: %v", err)
	}

	expires := time.UnixMilli(creds.ExpireTime)
	log.Printf("broker %s:%d user=%s expires=%s robots=%d",
		creds.Host, creds.Port, creds.Username, expires.Format(time.RFC3339), len(creds.Robots))

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		log.Fatalf("marshal credentials: %v", err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, append(data, '\n'), 0600); err != nil {
			log.Fatalf("write %s: %v", *outPath, err)
		}
		log.Printf("wrote %s", *outPath)
		return
	}
	fmt.Println(string(data))
}
