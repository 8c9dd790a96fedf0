package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ShareScopePlanRead grants read access to a student's latest plan.
const ShareScopePlanRead = "plan:read"

// ShareClaims are embedded in share link tokens.
type ShareClaims struct {
	Scope        string `json:"scope"`
	PasscodeHash string `json:"pch,omitempty"`
	jwt.RegisteredClaims
}

// ShareLink is returned when a share token is issued.
type ShareLink struct {
	Token            string    `json:"token"`
	StudentID        string    `json:"studentId"`
	ExpiresAt        time.Time `json:"expiresAt"`
	PasscodeRequired bool      `json:"passcodeRequired"`
}
