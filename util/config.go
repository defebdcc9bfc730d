package util

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const Name = "mammut"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		Host     string
		HttpPort int `yaml:"httpPort"`
		// NodeHost is the base URL this node embeds in canonical object ids,
		// e.g. "https://node.example.com/". A trailing slash is enforced.
		NodeHost string `yaml:"nodeHost"`
		DbPath   string `yaml:"dbPath"`
		WithRss  bool   `yaml:"withRss"`
	}
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	var buf []byte
	var err error

	buf, err = os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envHost := os.Getenv("MAMMUT_HOST")
	envHttpPort := os.Getenv("MAMMUT_HTTPPORT")
	envNodeHost := os.Getenv("MAMMUT_NODEHOST")
	envDbPath := os.Getenv("MAMMUT_DBPATH")
	envWithRss := os.Getenv("MAMMUT_WITH_RSS")

	if envHost != "" {
		c.Conf.Host = envHost
	}

	if envHttpPort != "" {
		v, err := strconv.Atoi(envHttpPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpPort = v
	}

	if envNodeHost != "" {
		c.Conf.NodeHost = envNodeHost
	}

	if envDbPath != "" {
		c.Conf.DbPath = envDbPath
	}

	if envWithRss == "true" {
		c.Conf.WithRss = true
	}

	if c.Conf.NodeHost != "" && c.Conf.NodeHost[len(c.Conf.NodeHost)-1] != '/' {
		c.Conf.NodeHost += "/"
	}

	return c, nil
}
