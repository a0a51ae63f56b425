package handlers

import (
	"net/http"
	"time"

	"github.com/Vyasma-Mafia/maftourbot/services"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler выдаёт JWT для административного API.
type AuthHandler struct {
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthHandler(adminPasswordHash string, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.adminPasswordHash), []byte(input.Password)); err != nil {
		mapServiceErrorToHTTP(w, r, services.ErrAuthInvalidCredentials)
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": signed}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
