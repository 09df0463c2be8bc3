package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram_Token string
	Db_Conn_Str    string
	Rabbit_Url     string
	Rabbit_Queue   string

	BugSink_Enabled     bool
	BugSink_DSN         string
	BugSink_Environment string
	BugSink_Release     string
}

var config Config

func C() *Config {
	return &config
}

func Init(file string) {
	log.Printf("[CONFIG] Initializing configuration from file: %s", file)

	viper.SetConfigName(file)
	viper.AddConfigPath(".")
	viper.SetDefault("Rabbit_Queue", "dealbot_messages")
	viper.SetDefault("BugSink_Environment", "production")

	err := viper.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Error reading config file: %s", err))
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		panic(fmt.Errorf("Error unmarshalling config: %s", err))
	}

	log.Printf("[CONFIG] Configuration loaded successfully")
	log.Printf("[CONFIG] Database connection string configured")
	log.Printf("[CONFIG] RabbitMQ queue: %s", config.Rabbit_Queue)
}
