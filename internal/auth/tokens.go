package auth

import (
	"errors"
	"time"

	"github.com/TWRT/law-office/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "law-office"

type tokenClaims struct {
	jwt.RegisteredClaims
	Purpose    models.TokenPurpose `json:"purpose"`
	Email      string              `json:"email"`
	Name       string              `json:"name,omitempty"`
	EmployeeID string              `json:"employee_id,omitempty"`
}

func signToken(secret []byte, c tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func parseToken(secret []byte, raw string, now func() time.Time) (tokenClaims, error) {
	var c tokenClaims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return tokenClaims{}, err
	}
	if c.ID == "" || c.Subject == "" {
		return tokenClaims{}, errors.New("token is missing identity claims")
	}
	return c, nil
}
