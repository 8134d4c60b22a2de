package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/light11014/Moodmate-Backend/feedbackservice"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("failed to read .env")
	}
	if err := feedbackservice.Run(); err != nil {
		log.Error().Err(err).Msg("feedback-service exited with error")
		os.Exit(1)
	}
}
