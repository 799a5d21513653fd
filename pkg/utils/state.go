package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// GenerateState returns a random value for the OAuth state parameter.
func GenerateState() (string, error) {
	return gonanoid.New(32)
}
