package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetPgConnStrFromEnv builds a libpq style connection string. The password is
// taken from POSTGRES_PW when POSTGRES_PASSWORD_SECRET_NAME is unset or the
// host is localhost, otherwise it is read from AWS Secrets Manager.
func GetPgConnStrFromEnv(ctx context.Context) (string, error) {
	host := os.Getenv("POSTGRES_HOST")
	secretName := os.Getenv("POSTGRES_PASSWORD_SECRET_NAME")

	var pw string
	if host == "localhost" || secretName == "" {
		pw = os.Getenv("POSTGRES_PW")
	} else {
		secretValue, err := getSecretFromAWS(ctx, secretName)
		if err != nil {
			return "", fmt.Errorf("failed to get postgres password from AWS: %w", err)
		}
		var secret struct {
			Password string `json:"password"`
		}
		if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
			return "", fmt.Errorf("failed to parse postgres password secret: %w", err)
		}
		pw = secret.Password
	}
	user := os.Getenv("POSTGRES_USER")
	port := envOr("POSTGRES_PORT", "5432")
	db := os.Getenv("POSTGRES_DB")
	ssl := envOr("POSTGRES_SSLMODE", "disable")

	if host == "" || user == "" || db == "" {
		return "", fmt.Errorf("POSTGRES_HOST, POSTGRES_USER and POSTGRES_DB must be set")
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pw, db, ssl), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getSecretFromAWS(ctx context.Context, secretName string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	svc := secretsmanager.NewFromConfig(cfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	if result.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretName)
	}
	return *result.SecretString, nil
}
