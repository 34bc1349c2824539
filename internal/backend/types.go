package backend

import (
	"time"

	"github.com/google/uuid"

	"github.com/invisibox/invisibox-web/internal/credentials"
)

// AuthResponse is the backend's answer to a successful login or signup.
// The profile fields and the token arrive together and are persisted
// together.
type AuthResponse struct {
	Email          string `json:"email"`
	InvisiboxEmail string `json:"invisiboxEmail"`
	CompanyName    string `json:"companyName"`
	Token          string `json:"token"`
}

// Profile extracts the persistable part of an auth response.
func (a AuthResponse) Profile() credentials.Profile {
	return credentials.Profile{
		Email:          a.Email,
		InvisiboxEmail: a.InvisiboxEmail,
		CompanyName:    a.CompanyName,
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetCode   string `json:"resetCode"`
	NewPassword string `json:"newPassword"`
}

type ForgotInvisiboxEmailRequest struct {
	Email string `json:"email"`
}

// VerifyInvisiboxEmailRequest checks that a proxy address exists before an
// employee subscribes or sends through it.
type VerifyInvisiboxEmailRequest struct {
	InvisiboxEmail string `json:"invisiboxEmail"`
}

type VerifyInvisiboxEmailResponse struct {
	Valid bool `json:"valid"`
}

type SubscribeRequest struct {
	InvisiboxEmail string `json:"invisiboxEmail"`
}

type UnsubscribeRequest struct {
	InvisiboxEmail string `json:"invisiboxEmail"`
}

// SendAnonymousMessageRequest carries an employee's message; the backend
// strips any identifying linkage before delivery.
type SendAnonymousMessageRequest struct {
	InvisiboxEmail string `json:"invisiboxEmail"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// StatusResponse is the generic acknowledgement envelope used by
// fire-and-forget endpoints.
type StatusResponse struct {
	Message string `json:"message"`
}

// DashboardStats backs the management overview page.
type DashboardStats struct {
	TotalSubscribers  int            `json:"totalSubscribers"`
	ActiveSubscribers int            `json:"activeSubscribers"`
	MessagesReceived  int            `json:"messagesReceived"`
	ActivePolls       int            `json:"activePolls"`
	MessagesPerMonth  []MonthlyCount `json:"messagesPerMonth"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// Subscriber is an employee identity as management sees it: the proxy
// address only, never the real one.
type Subscriber struct {
	ID             uuid.UUID `json:"id"`
	InvisiboxEmail string    `json:"invisiboxEmail"`
	Status         string    `json:"status"`
	Warnings       int       `json:"warnings"`
	JoinedAt       time.Time `json:"joinedAt"`
}

type Message struct {
	ID         uuid.UUID `json:"id"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type Poll struct {
	ID        uuid.UUID `json:"id"`
	Question  string    `json:"question"`
	Options   []string  `json:"options"`
	CreatedAt time.Time `json:"createdAt"`
}
