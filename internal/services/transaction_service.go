package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "finny/internal/errors"
	"finny/internal/logger"
	"finny/internal/models"
	"finny/internal/pagination"
)

const tracerName = "finny/internal/services"

// transactionService is the ledger coordinator. It owns the transaction
// records and drives the balance mutator and tag synchronizer inside a single
// database transaction per operation.
type transactionService struct {
	db             *gorm.DB
	accountService AccountServicer
	tagService     TagServicer
	tracer         trace.Tracer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, accountService AccountServicer, tagService TagServicer) TransactionServicer {
	return &transactionService{
		db:             db,
		accountService: accountService,
		tagService:     tagService,
		tracer:         otel.Tracer(tracerName),
	}
}

// CreateTransaction records a transaction, links its tags and applies its
// effect to the account balances in one unit of work.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, input TransactionInput) (*models.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.create", trace.WithAttributes(
		attribute.String("ledger.owner_id", userID),
		attribute.String("ledger.type", string(input.Type)),
	))
	defer span.End()

	if err := validateInput(&input); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	tagIDs := uniqueIDs(input.TagIDs)
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Amount:      input.Amount,
		Type:        input.Type,
		CategoryID:  input.CategoryID,
		AccountID:   input.AccountID,
		ToAccountID: input.ToAccountID,
		Date:        models.DateOnly(date),
		Note:        input.Note,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if transaction.CategoryID != nil {
			if _, err := findCategory(tx, userID, *transaction.CategoryID); err != nil {
				return err
			}
		}
		if err := s.tagService.RequireOwnedTags(tx, userID, tagIDs); err != nil {
			return err
		}

		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := replaceTags(tx, transaction.ID, tagIDs); err != nil {
			return err
		}
		if err := s.tagService.IncrementUsage(tx, userID, tagIDs); err != nil {
			return err
		}
		return s.accountService.ApplyBalanceEffect(tx, userID, transaction.Effect(), false)
	})
	if err != nil {
		s.logFailure("create", userID, "", err)
		recordSpanError(span, err)
		return nil, err
	}

	transaction.TagIDs = append([]string(nil), tagIDs...)
	slices.Sort(transaction.TagIDs)
	span.SetAttributes(attribute.String("ledger.transaction_id", transaction.ID))
	logger.Get().Debugw("ledger transaction created",
		"user_id", userID,
		"transaction_id", transaction.ID,
		"type", transaction.Type,
		"amount", transaction.Amount.String(),
	)
	return transaction, nil
}

// GetTransactionByID retrieves a transaction and its tag ids for a specific user.
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	db := s.db.WithContext(ctx)

	transaction, err := findTransaction(db, userID, transactionID, false)
	if err != nil {
		return nil, err
	}
	if transaction.TagIDs, err = tagIDsFor(db, transaction.ID); err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions lists a user's transactions, newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()
	db := s.db.WithContext(ctx)

	var totalItems int64
	if err := listQuery(db, userID, filter).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := listQuery(db, userID, filter).
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	ids := make([]string, len(transactions))
	for i := range transactions {
		ids[i] = transactions[i].ID
	}
	tags, err := tagIDsForMany(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		transactions[i].TagIDs = tags[transactions[i].ID]
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// likeEscaper makes LIKE metacharacters in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func listQuery(db *gorm.DB, userID string, f TransactionFilter) *gorm.DB {
	q := db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AccountID != nil {
		q = q.Where("(account_id = ? OR to_account_id = ?)", *f.AccountID, *f.AccountID)
	}
	if f.TagID != nil {
		q = q.Where("id IN (?)", db.Model(&models.TransactionTag{}).
			Select("transaction_id").
			Where("tag_id = ?", *f.TagID))
	}
	if f.FromDate != nil {
		q = q.Where("date >= ?", models.DateOnly(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", models.DateOnly(*f.ToDate))
	}
	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		term := likeEscaper.Replace(strings.ToLower(strings.TrimSpace(*f.Search)))
		q = q.Where(`LOWER(COALESCE(note, '')) LIKE ? ESCAPE '\'`, "%"+term+"%")
	}
	return q
}

// UpdateTransaction applies a sparse update. The old effect is reversed
// before the record changes and the new effect is applied afterwards, so
// moving a transaction between accounts or types lands on the new target.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, update TransactionUpdate) (*models.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.update", trace.WithAttributes(
		attribute.String("ledger.owner_id", userID),
		attribute.String("ledger.transaction_id", transactionID),
	))
	defer span.End()

	if err := validateUpdate(update); err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	var result *models.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := findTransaction(tx, userID, transactionID, true)
		if err != nil {
			return err
		}
		oldTagIDs, err := tagIDsFor(tx, transaction.ID)
		if err != nil {
			return err
		}

		if err := s.accountService.ApplyBalanceEffect(tx, userID, transaction.Effect(), true); err != nil {
			return err
		}

		newTagIDs := oldTagIDs
		if update.TagIDs.Set && !update.TagIDs.Null {
			newTagIDs = uniqueIDs(update.TagIDs.Value)
			if err := s.tagService.RequireOwnedTags(tx, userID, newTagIDs); err != nil {
				return err
			}
			if err := s.tagService.DecrementUsage(tx, userID, oldTagIDs); err != nil {
				return err
			}
			if err := replaceTags(tx, transaction.ID, newTagIDs); err != nil {
				return err
			}
			if err := s.tagService.IncrementUsage(tx, userID, newTagIDs); err != nil {
				return err
			}
		}

		applyUpdate(transaction, update)
		if err := checkTransfer(transaction.Type, transaction.ToAccountID); err != nil {
			return err
		}
		if update.CategoryID.Set && transaction.CategoryID != nil {
			if _, err := findCategory(tx, userID, *transaction.CategoryID); err != nil {
				return err
			}
		}

		transaction.UpdatedAt = time.Now()
		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := s.accountService.ApplyBalanceEffect(tx, userID, transaction.Effect(), false); err != nil {
			return err
		}

		transaction.TagIDs = append([]string(nil), newTagIDs...)
		slices.Sort(transaction.TagIDs)
		result = transaction
		return nil
	})
	if err != nil {
		s.logFailure("update", userID, transactionID, err)
		recordSpanError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("ledger.type", string(result.Type)))
	logger.Get().Debugw("ledger transaction updated",
		"user_id", userID,
		"transaction_id", result.ID,
		"type", result.Type,
		"amount", result.Amount.String(),
	)
	return result, nil
}

// DeleteTransaction reverses a transaction's effect, releases its tags and
// removes it.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	ctx, span := s.tracer.Start(ctx, "ledger.delete", trace.WithAttributes(
		attribute.String("ledger.owner_id", userID),
		attribute.String("ledger.transaction_id", transactionID),
	))
	defer span.End()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := findTransaction(tx, userID, transactionID, true)
		if err != nil {
			return err
		}
		tagIDs, err := tagIDsFor(tx, transaction.ID)
		if err != nil {
			return err
		}

		if err := s.accountService.ApplyBalanceEffect(tx, userID, transaction.Effect(), true); err != nil {
			return err
		}
		if err := s.tagService.DecrementUsage(tx, userID, tagIDs); err != nil {
			return err
		}
		if err := clearTags(tx, transaction.ID); err != nil {
			return err
		}
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		s.logFailure("delete", userID, transactionID, err)
		recordSpanError(span, err)
		return err
	}

	logger.Get().Debugw("ledger transaction deleted", "user_id", userID, "transaction_id", transactionID)
	return nil
}

func findTransaction(db *gorm.DB, userID, transactionID string, lock bool) (*models.Transaction, error) {
	if lock {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var transaction models.Transaction
	if err := db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// validateInput checks a create request and normalizes the destination
// account away for non-transfer types.
func validateInput(input *TransactionInput) error {
	if err := validateAmount(input.Amount); err != nil {
		return err
	}
	if !input.Type.IsValid() {
		return apperrors.ErrInvalidTransactionType
	}
	if input.AccountID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	input.CategoryID = nonEmpty(input.CategoryID)
	input.ToAccountID = nonEmpty(input.ToAccountID)
	if input.Type != models.TransactionTypeTransfer {
		input.ToAccountID = nil
	}
	return checkTransfer(input.Type, input.ToAccountID)
}

func validateUpdate(u TransactionUpdate) error {
	if u.Amount.Set {
		if u.Amount.Null {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be null")
		}
		if err := validateAmount(u.Amount.Value); err != nil {
			return err
		}
	}
	if u.Type.Set {
		if u.Type.Null {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "type cannot be null")
		}
		if !u.Type.Value.IsValid() {
			return apperrors.ErrInvalidTransactionType
		}
	}
	if u.AccountID.Set && (u.AccountID.Null || u.AccountID.Value == "") {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account ID is required")
	}
	if u.Date.Set && (u.Date.Null || u.Date.Value.IsZero()) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date cannot be null")
	}
	return nil
}

// applyUpdate copies the supplied fields onto the record.
func applyUpdate(t *models.Transaction, u TransactionUpdate) {
	if u.Amount.Set {
		t.Amount = u.Amount.Value
	}
	if u.Type.Set {
		t.Type = u.Type.Value
	}
	if u.CategoryID.Set {
		t.CategoryID = nonEmpty(u.CategoryID.Value)
	}
	if u.AccountID.Set {
		t.AccountID = u.AccountID.Value
	}
	if u.ToAccountID.Set {
		t.ToAccountID = nonEmpty(u.ToAccountID.Value)
	}
	if u.Date.Set {
		t.Date = models.DateOnly(u.Date.Value)
	}
	if u.Note.Set {
		t.Note = u.Note.Value
	}
	if t.Type != models.TransactionTypeTransfer {
		t.ToAccountID = nil
	}
}

func checkTransfer(txType models.TransactionType, toAccountID *string) error {
	if txType == models.TransactionTypeTransfer && (toAccountID == nil || *toAccountID == "") {
		return apperrors.ErrInvalidTransfer
	}
	return nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (s *transactionService) logFailure(op, userID, transactionID string, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode < 500 {
		return
	}
	logger.Get().Errorw("ledger operation failed",
		"operation", op,
		"user_id", userID,
		"transaction_id", transactionID,
		"error", err,
		"cause", errors.Unwrap(err),
	)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
