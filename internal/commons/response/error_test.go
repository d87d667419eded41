package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"go-coin-wallet/internal/commons/response"
	"go-coin-wallet/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestFromDomainError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("apply: %w", entity.ErrInsufficientFunds), http.StatusBadRequest},
		{entity.ErrInactiveWallet, http.StatusForbidden},
		{entity.ErrInvalidTransactionType, http.StatusInternalServerError},
		{entity.ErrInvalidStateTransition, http.StatusConflict},
		{entity.ErrNoActiveRateConfigured, http.StatusInternalServerError},
		{entity.ErrWalletNotFound, http.StatusNotFound},
		{errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, c := range cases {
		custErr := response.FromDomainError(c.err, "failed")
		assert.Equal(t, c.code, custErr.StatusCode, c.err.Error())
	}
}

func TestFromDomainError_Passthrough(t *testing.T) {
	original := response.BadRequestError("bad")
	assert.Same(t, original, response.FromDomainError(original, "failed"))
	assert.Nil(t, response.FromDomainError(nil, "failed"))
}

func TestFromDomainError_FallbackMessage(t *testing.T) {
	custErr := response.FromDomainError(errors.New("boom"), "failed to apply transaction")
	assert.Equal(t, "failed to apply transaction", custErr.Message)
}
