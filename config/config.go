package config

import (
	"log"

	"github.com/joho/godotenv"
)

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
		return
	}
	log.Println("loaded environment variables")
}
