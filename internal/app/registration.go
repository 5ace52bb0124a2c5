package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
	"paperdesk/pkg/mail"
)

// RegisterInput carries the candidate order staged during phase 1.
type RegisterInput struct {
	Email         string
	PaperType     string
	NumberOfPages int
	DueDate       string
}

// RegisterResult is the soft phase-1 result. Failure modes (cache
// down, email undeliverable) report success=false instead of failing
// the call, so the caller can reprompt.
type RegisterResult struct {
	Success           bool
	Message           string
	VerificationToken *string
}

// VerifyResult is the phase-2 result. Token is echoed back unchanged
// on success so the frontend can carry it into completion.
type VerifyResult struct {
	Valid       bool
	Message     string
	RedirectURL string
	Token       string
}

// CompletionResult is the phase-3 result.
type CompletionResult struct {
	Valid   bool
	Message string
}

// RegisterAndCreateOrder stages a pending registration under a fresh
// token and emails the verification link. No relational row exists
// until completion commits.
func (a *App) RegisterAndCreateOrder(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.PaperType == "" || in.NumberOfPages <= 0 {
		return RegisterResult{Success: false, Message: "email, paperType and numberOfPages are required"}, nil
	}

	token := util.NewID()
	reg := domain.PendingRegistration{
		Email:         email,
		PaperType:     in.PaperType,
		NumberOfPages: in.NumberOfPages,
		DueDate:       in.DueDate,
	}
	if err := a.verifications.Stage(token, reg, a.verificationTTL); err != nil {
		slog.Error("stage registration failed", "error", err)
		return RegisterResult{Success: false, Message: "Could not start registration. Please try again."}, nil
	}

	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", a.baseURL, token)
	if err := a.mailer.Send(ctx, mail.VerificationMessage(email, verifyURL)); err != nil {
		slog.Error("verification email failed", "error", err)
		return RegisterResult{Success: false, Message: "Could not send verification email. Please try again."}, nil
	}

	return RegisterResult{
		Success:           true,
		Message:           "Verification email sent. Please check your inbox.",
		VerificationToken: &token,
	}, nil
}

// VerifyEmail checks a token without consuming it. Calling it twice on
// a still-valid token returns the same payload both times.
func (a *App) VerifyEmail(token string) (VerifyResult, error) {
	_, ok, err := a.verifications.Peek(token)
	if err != nil {
		slog.Error("verification lookup failed", "error", err)
		return VerifyResult{Valid: false, Message: MsgTokenInvalidSoft, RedirectURL: "#", Token: ""}, nil
	}
	if !ok {
		return VerifyResult{Valid: false, Message: MsgTokenInvalidSoft, RedirectURL: "#", Token: ""}, nil
	}
	return VerifyResult{
		Valid:       true,
		Message:     "Email verified. Continue to complete your registration.",
		RedirectURL: a.frontendURL + "/complete-registration",
		Token:       token,
	}, nil
}

// CompleteRegistration consumes the token atomically, then promotes
// the staged data into a student account and a pending order. The
// consume is a get-and-delete in one step so two racing completions
// cannot both win.
func (a *App) CompleteRegistration(ctx context.Context, token string) (CompletionResult, error) {
	reg, ok, err := a.verifications.Consume(token)
	if err != nil {
		// Transport failure: nothing was consumed, distinct message.
		slog.Error("consume verification token failed", "error", err)
		return CompletionResult{}, Wrap(KindInternal, MsgCompletionFailed, err)
	}
	if !ok {
		return CompletionResult{}, E(KindNotFound, MsgTokenInvalidThrown)
	}

	student, found, err := a.store.GetUserByEmail(reg.Email)
	if err != nil {
		return CompletionResult{}, Wrap(KindInternal, MsgCompletionFailed, fmt.Errorf("fetch student: %w", err))
	}
	if !found {
		now := time.Now().UTC()
		student = domain.User{
			ID:        util.NewID(),
			Email:     reg.Email,
			Role:      domain.RoleStudent,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := a.store.SaveUser(student); err != nil {
			return CompletionResult{}, Wrap(KindInternal, MsgCompletionFailed, fmt.Errorf("save student: %w", err))
		}
	}

	total, deposit := orderAmounts(reg.NumberOfPages)
	now := time.Now().UTC()
	order := domain.Order{
		ID:            util.NewID(),
		StudentID:     student.ID,
		PaperType:     reg.PaperType,
		NumberOfPages: reg.NumberOfPages,
		DueDate:       reg.DueDate,
		TotalAmount:   total,
		DepositAmount: deposit,
		Status:        domain.OrderPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.SaveOrder(order); err != nil {
		return CompletionResult{}, Wrap(KindInternal, MsgCompletionFailed, fmt.Errorf("save order: %w", err))
	}

	msg := mail.OrderConfirmationMessage(student.Email, order.ID, order.PaperType,
		order.NumberOfPages, order.DueDate, order.TotalAmount, order.DepositAmount)
	if err := a.mailer.Send(ctx, msg); err != nil {
		slog.Warn("order confirmation email failed", "order_id", order.ID, "error", err)
	}

	return CompletionResult{Valid: true, Message: MsgCompletionSuccess}, nil
}
