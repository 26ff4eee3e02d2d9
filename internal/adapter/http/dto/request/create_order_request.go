package request

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"

	"webinar_billing/internal/domain/entities"
	"webinar_billing/internal/usecase"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidAmount = errors.New("invalid amount")

var registerOnce sync.Once

// CreateOrderRequest is the registration form submitted by the landing page.
type CreateOrderRequest struct {
	Name           string      `json:"name" binding:"required,max=200"`
	Email          string      `json:"email" binding:"required,email"`
	WhatsApp       string      `json:"whatsapp" binding:"required,phone"`
	Amount         json.Number `json:"amount" swaggertype:"number"`
	Currency       string      `json:"currency" binding:"omitempty,len=3,alpha"`
	RegistrationID string      `json:"registrationId" binding:"omitempty,max=128,startsnotwith=order#"`
}

// RegisterValidations installs the custom binding tags used by request DTOs.
// It is safe to call more than once.
func RegisterValidations() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("phone", validatePhone)
	})
}

// validatePhone accepts 10 to 15 digits once separators are stripped.
func validatePhone(fl validator.FieldLevel) bool {
	digits := entities.DigitsOnly(fl.Field().String())
	return len(digits) >= 10 && len(digits) <= 15
}

// ResolveAmount returns the requested amount, defaulting when absent.
func (r CreateOrderRequest) ResolveAmount() (float64, error) {
	raw := strings.TrimSpace(r.Amount.String())
	if raw == "" {
		return usecase.DefaultOrderAmount, nil
	}
	v, err := json.Number(raw).Float64()
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

func (r CreateOrderRequest) ToInput() (usecase.CreateOrderInput, error) {
	amount, err := r.ResolveAmount()
	if err != nil {
		return usecase.CreateOrderInput{}, err
	}
	return usecase.CreateOrderInput{
		Name:           strings.TrimSpace(r.Name),
		Email:          strings.TrimSpace(r.Email),
		WhatsApp:       strings.TrimSpace(r.WhatsApp),
		Amount:         amount,
		Currency:       strings.TrimSpace(r.Currency),
		RegistrationID: strings.TrimSpace(r.RegistrationID),
	}, nil
}
