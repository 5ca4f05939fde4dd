package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"finny/internal/models"
	"finny/internal/pagination"
	"finny/internal/services"
)

// AccountHandler handles account-related requests.
type AccountHandler struct {
	accountService services.AccountServicer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService services.AccountServicer) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the request payload for creating an account
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required,min=1,max=100"`
	Type           models.AccountType `json:"type" binding:"omitempty,account_type" example:"bank"`
	InitialBalance decimal.Decimal    `json:"initial_balance" swaggertype:"number" example:"1000.00"`
	Icon           string             `json:"icon" binding:"max=50"`
	Color          string             `json:"color" binding:"omitempty,hex_color"`
}

// ListAccountsQuery holds the query parameters for listing accounts.
type ListAccountsQuery struct {
	pagination.PageRequest
	IncludeArchived bool `form:"include_archived"`
}

// AccountResponse represents an account in the response
type AccountResponse struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	Name           string             `json:"name"`
	Type           models.AccountType `json:"type"`
	Balance        string             `json:"balance"`
	InitialBalance string             `json:"initial_balance"`
	Icon           string             `json:"icon,omitempty"`
	Color          string             `json:"color,omitempty"`
	IsArchived     bool               `json:"is_archived"`
}

// TotalBalanceResponse is the sum of the caller's active account balances.
type TotalBalanceResponse struct {
	TotalBalance string `json:"total_balance"`
}

// CreateAccount handles the creation of a new account
// @Summary     Create an account
// @Description Create an account whose balance starts at its initial balance
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateAccountRequest true "Account details"
// @Success     201 {object} AccountResponse "Account created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	account, err := h.accountService.CreateAccount(userID, services.AccountInput{
		Name:           req.Name,
		Type:           req.Type,
		InitialBalance: req.InitialBalance,
		Icon:           req.Icon,
		Color:          req.Color,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"account": account})
}

// GetUserAccounts handles listing the caller's accounts
// @Summary     List accounts
// @Description List accounts in creation order, archived ones only on request
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       page             query int  false "Page number"
// @Param       page_size        query int  false "Page size (max 100)"
// @Param       include_archived query bool false "Include archived accounts"
// @Success     200 {object} pagination.PageResponse[AccountResponse]
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts [get]
func (h *AccountHandler) GetUserAccounts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListAccountsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.accountService.GetUserAccounts(userID, query.IncludeArchived, query.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAccountByID handles the retrieval of a specific account
// @Summary     Get account by ID
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} AccountResponse "Account details"
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id} [get]
func (h *AccountHandler) GetAccountByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": account})
}

// GetTotalBalance handles the total balance across active accounts
// @Summary     Total balance
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} TotalBalanceResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/total-balance [get]
func (h *AccountHandler) GetTotalBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total, err := h.accountService.GetTotalBalance(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TotalBalanceResponse{TotalBalance: total.StringFixed(2)})
}

// ReconcileAccount compares the stored balance with the transaction history
// @Summary     Reconcile account
// @Description Recompute initial balance plus every live transaction effect and report drift
// @Tags        accounts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Account ID"
// @Success     200 {object} services.Reconciliation
// @Failure     400 {object} ErrorResponse "Invalid account ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /accounts/{id}/reconcile [get]
func (h *AccountHandler) ReconcileAccount(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accountID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.accountService.ReconcileAccount(userID, accountID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reconciliation": result})
}
