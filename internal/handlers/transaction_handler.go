package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finny/internal/errors"
	"finny/internal/models"
	"finny/internal/optional"
	"finny/internal/pagination"
	"finny/internal/services"
	"finny/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	Amount      *decimal.Decimal       `json:"amount" binding:"required" swaggertype:"number" example:"50.00"`
	Type        models.TransactionType `json:"type" binding:"required,transaction_type" example:"expense"`
	AccountID   string                 `json:"account_id" binding:"required,resource_id"`
	ToAccountID *string                `json:"to_account_id" binding:"omitempty,resource_id"`
	CategoryID  *string                `json:"category_id" binding:"omitempty,resource_id"`
	Date        *string                `json:"date" example:"2024-01-15"`
	Note        *string                `json:"note" binding:"omitempty,max=500"`
	TagIDs      []string               `json:"tag_ids" binding:"omitempty,dive,resource_id"`
}

// UpdateTransactionRequest is a sparse update. Omitted fields are left as
// they are; null clears category_id, to_account_id and note. tag_ids: []
// removes every tag, while omitting it (or sending null) keeps them.
type UpdateTransactionRequest struct {
	Amount      optional.Value[decimal.Decimal]        `json:"amount" swaggertype:"number"`
	Type        optional.Value[models.TransactionType] `json:"type" swaggertype:"string"`
	AccountID   optional.Value[string]                 `json:"account_id" swaggertype:"string"`
	ToAccountID optional.Value[*string]                `json:"to_account_id" swaggertype:"string"`
	CategoryID  optional.Value[*string]                `json:"category_id" swaggertype:"string"`
	Date        optional.Value[string]                 `json:"date" swaggertype:"string"`
	Note        optional.Value[*string]                `json:"note" swaggertype:"string"`
	TagIDs      optional.Value[[]string]               `json:"tag_ids" swaggertype:"array,string"`
}

// TransactionResponse represents a transaction in the response
type TransactionResponse struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Amount      string                 `json:"amount" example:"50.00"`
	Type        models.TransactionType `json:"type"`
	AccountID   string                 `json:"account_id"`
	ToAccountID *string                `json:"to_account_id"`
	CategoryID  *string                `json:"category_id"`
	Date        string                 `json:"date" example:"2024-01-15"`
	Note        *string                `json:"note"`
	TagIDs      []string               `json:"tag_ids"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// TransactionEnvelope wraps a single transaction.
type TransactionEnvelope struct {
	Transaction TransactionResponse `json:"transaction"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	tagIDs := t.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	return TransactionResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Amount:      t.Amount.StringFixed(2),
		Type:        t.Type,
		AccountID:   t.AccountID,
		ToAccountID: t.ToAccountID,
		CategoryID:  t.CategoryID,
		Date:        t.Date.Format(dateLayout),
		Note:        t.Note,
		TagIDs:      tagIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func transactionEnvelope(t *models.Transaction) TransactionEnvelope {
	return TransactionEnvelope{Transaction: toTransactionResponse(t)}
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record income, an expense or a transfer and apply it to account balances and tag usage atomically
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} TransactionEnvelope "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input or transfer without destination"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Account, category or tag not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	input := services.TransactionInput{
		Amount:      *req.Amount,
		Type:        req.Type,
		AccountID:   req.AccountID,
		ToAccountID: req.ToAccountID,
		CategoryID:  req.CategoryID,
		Note:        req.Note,
		TagIDs:      req.TagIDs,
	}
	if req.Date != nil && *req.Date != "" {
		if input.Date, err = parseDate(*req.Date); err != nil {
			respondWithError(c, err)
			return
		}
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transactionEnvelope(transaction))
}

// GetUserTransactions lists the caller's transactions
// @Summary     List transactions
// @Description List transactions newest first, optionally filtered
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number"
// @Param       page_size   query int    false "Page size (max 100)"
// @Param       type        query string false "income, expense or transfer"
// @Param       category_id query string false "Category ID"
// @Param       account_id  query string false "Account ID (either side of a transfer)"
// @Param       tag_id      query string false "Tag ID"
// @Param       from_date   query string false "Inclusive start date (YYYY-MM-DD)"
// @Param       to_date     query string false "Inclusive end date (YYYY-MM-DD)"
// @Param       search      query string false "Case-insensitive note substring"
// @Success     200 {object} pagination.PageResponse[TransactionResponse]
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	data := make([]TransactionResponse, len(result.Data))
	for i := range result.Data {
		data[i] = toTransactionResponse(&result.Data[i])
	}
	c.JSON(http.StatusOK, pagination.NewPageResponse(data, result.Page, result.PageSize, result.TotalItems))
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("type"); v != "" {
		txType := models.TransactionType(v)
		if !txType.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid type, must be income, expense or transfer")
		}
		filter.Type = &txType
	}

	for param, dst := range map[string]**string{
		"category_id": &filter.CategoryID,
		"account_id":  &filter.AccountID,
		"tag_id":      &filter.TagID,
	} {
		v := c.Query(param)
		if v == "" {
			continue
		}
		id, err := uuid.Normalize(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+param)
		}
		*dst = &id
	}

	if v := c.Query("from_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use YYYY-MM-DD or RFC3339")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use YYYY-MM-DD or RFC3339")
		}
		filter.ToDate = &t
	}

	if filter.FromDate != nil && filter.ToDate != nil && filter.FromDate.After(*filter.ToDate) {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from_date must not be after to_date")
	}

	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID, including its tag ids
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionEnvelope "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionEnvelope(transaction))
}

// UpdateTransaction handles a partial update of a transaction
// @Summary     Update transaction
// @Description Reverse the old effect, apply the supplied fields, then apply the new effect
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} TransactionEnvelope "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction, account or tag not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, transactionID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionEnvelope(transaction))
}

// toUpdate checks id formats and converts the date, keeping presence intact.
func (r UpdateTransactionRequest) toUpdate() (services.TransactionUpdate, error) {
	update := services.TransactionUpdate{
		Amount:      r.Amount,
		Type:        r.Type,
		AccountID:   r.AccountID,
		ToAccountID: r.ToAccountID,
		CategoryID:  r.CategoryID,
		Note:        r.Note,
		TagIDs:      r.TagIDs,
	}

	if r.AccountID.Set && !r.AccountID.Null && !uuid.IsValid(r.AccountID.Value) {
		return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account_id")
	}
	for name, v := range map[string]optional.Value[*string]{"to_account_id": r.ToAccountID, "category_id": r.CategoryID} {
		if v.Set && v.Value != nil && *v.Value != "" && !uuid.IsValid(*v.Value) {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name)
		}
	}
	for _, id := range r.TagIDs.Value {
		if !uuid.IsValid(id) {
			return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid tag_ids")
		}
	}
	if r.Note.Set && r.Note.Value != nil && len(*r.Note.Value) > 500 {
		return update, apperrors.WithMessage(apperrors.ErrInvalidInput, "note must be at most 500 characters")
	}

	if r.Date.Set {
		if r.Date.Null {
			update.Date = optional.Null[time.Time]()
		} else {
			d, err := parseDate(r.Date.Value)
			if err != nil {
				return update, err
			}
			update.Date = optional.Of(d)
		}
	}
	return update, nil
}

// DeleteTransaction handles the deletion of a transaction
// @Summary     Delete transaction
// @Description Reverse a transaction's balance effect, release its tags and delete it
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
