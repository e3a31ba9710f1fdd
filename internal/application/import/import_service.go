package importapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dropship/backoffice/internal/application/media"
	"github.com/dropship/backoffice/internal/domain/bulk"
	"github.com/dropship/backoffice/internal/domain/catalog"
	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	csvimport "github.com/dropship/backoffice/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImportServiceConfig holds tunables for the bulk import pipeline
type ImportServiceConfig struct {
	SyncRowLimit int   // Files at or under this row count import synchronously
	MaxRows      int   // Hard cap on data rows per file
	MaxFileSize  int64 // Upload size cap in bytes
}

// DefaultImportServiceConfig returns the default import configuration
func DefaultImportServiceConfig() ImportServiceConfig {
	return ImportServiceConfig{
		SyncRowLimit: 1000,
		MaxRows:      50000,
		MaxFileSize:  20 << 20,
	}
}

// progressSaveInterval is how many rows are processed between session saves,
// so progress polling sees fresh counters during long imports.
const progressSaveInterval = 50

// skuPreloadChunk limits how many SKUs are looked up per query when
// preloading existing products.
const skuPreloadChunk = 500

// requiredColumns must be present in the header after alias mapping
var requiredColumns = []string{"sku", "name"}

// headerAliases maps accepted header spellings to the canonical column
// names the field rules are written against. Headers are normalized
// (lowercased, spaces and dashes collapsed to underscores) before lookup.
var headerAliases = map[string]string{
	"sku":            "sku",
	"article":        "sku",
	"name":           "name",
	"title":          "name",
	"product_name":   "name",
	"description":    "description",
	"desc":           "description",
	"category":       "category",
	"category_name":  "category",
	"purchase_price": "purchase_price",
	"cost":           "purchase_price",
	"cost_price":     "purchase_price",
	"selling_price":  "selling_price",
	"price":          "selling_price",
	"sale_price":     "selling_price",
	"payout":         "payout",
	"commission":     "payout",
	"stock":          "stock",
	"stock_qty":      "stock",
	"quantity":       "stock",
	"qty":            "stock",
	"supplier_url":   "supplier_url",
	"source_url":     "supplier_url",
	"visibility":     "visibility",
	"status":         "visibility",
}

// ImportService runs bulk product imports from uploaded spreadsheets.
// Files at or under the sync row limit are processed within the upload
// request; larger files continue in a background goroutine that can be
// cancelled between rows.
type ImportService struct {
	sessionRepo    bulk.ImportSessionRepository
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	storage        media.ObjectStorageService
	eventPublisher shared.EventPublisher
	tracker        *csvimport.SessionTracker
	config         ImportServiceConfig
	logger         *zap.Logger
	wg             sync.WaitGroup
}

// NewImportService creates a new ImportService
func NewImportService(
	sessionRepo bulk.ImportSessionRepository,
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	storage media.ObjectStorageService,
	config ImportServiceConfig,
	logger *zap.Logger,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaults := DefaultImportServiceConfig()
	if config.SyncRowLimit <= 0 {
		config.SyncRowLimit = defaults.SyncRowLimit
	}
	if config.MaxRows <= 0 {
		config.MaxRows = defaults.MaxRows
	}
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = defaults.MaxFileSize
	}

	return &ImportService{
		sessionRepo:  sessionRepo,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		storage:      storage,
		tracker:      csvimport.NewSessionTracker(),
		config:       config,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ImportService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// runOptions carries per-run flags that are not persisted on the session
type runOptions struct {
	AutoCreateCategories bool
}

// Upload stores the spreadsheet, creates an import session and runs it.
// The returned response already carries the full report for synchronous
// runs; background runs return the session in its VALIDATING state.
//
// Problems inside an accepted file (bad encoding, missing header columns)
// fail the session rather than the request, so the report records them.
func (s *ImportService) Upload(ctx context.Context, tenantID, userID uuid.UUID, filename string, data []byte, req UploadRequest) (*SessionResponse, error) {
	if len(data) == 0 {
		return nil, shared.NewDomainError("EMPTY_FILE", "Uploaded file is empty")
	}
	if int64(len(data)) > s.config.MaxFileSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE",
			fmt.Sprintf("File exceeds the %d MB upload limit", s.config.MaxFileSize>>20))
	}

	format, err := sniffFormat(filename, data)
	if err != nil {
		return nil, err
	}

	mode := bulk.ConflictModeSkip
	if req.ConflictMode != "" {
		mode = bulk.ConflictMode(strings.ToUpper(req.ConflictMode))
	}

	storageKey := media.ImportKey(tenantID, filename)
	if err := s.storage.Upload(ctx, storageKey, data, contentTypeForFormat(format)); err != nil {
		return nil, fmt.Errorf("failed to store uploaded file: %w", err)
	}

	session, err := bulk.NewImportSession(tenantID, userID, filename, storageKey, int64(len(data)), format, mode, req.DryRun)
	if err != nil {
		return nil, err
	}
	if err := session.StartValidation(); err != nil {
		return nil, err
	}

	pf, err := s.parseFile(format, data)
	if err != nil {
		return s.failUpload(ctx, session, failReasonFor(err))
	}
	if len(pf.rows) == 0 {
		return s.failUpload(ctx, session, "File contains no data rows")
	}
	if len(pf.rows) > s.config.MaxRows {
		return s.failUpload(ctx, session,
			fmt.Sprintf("File has %d data rows, the maximum is %d", len(pf.rows), s.config.MaxRows))
	}

	_ = session.SetTotalRows(len(pf.rows))
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	opts := runOptions{AutoCreateCategories: req.AutoCreateCategories}
	background := len(pf.rows) > s.config.SyncRowLimit

	s.logger.Info("import session started",
		zap.String("session_id", session.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.String("filename", filename),
		zap.String("format", string(format)),
		zap.String("conflict_mode", string(mode)),
		zap.Int("total_rows", len(pf.rows)),
		zap.Bool("dry_run", req.DryRun),
		zap.Bool("background", background))

	if !background {
		runCtx, cancel := s.tracker.Register(ctx, session.ID)
		defer cancel()
		defer s.tracker.Release(session.ID)

		s.process(runCtx, session, pf.rows, opts)

		response := ToSessionResponse(session)
		return &response, nil
	}

	// Snapshot the response before the goroutine starts mutating the session
	runCtx, cancel := s.tracker.Register(context.Background(), session.ID)
	response := ToSessionResponse(session)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer s.tracker.Release(session.ID)

		s.process(runCtx, session, pf.rows, opts)
	}()

	return &response, nil
}

// GetSession returns the status and report of an import session
func (s *ImportService) GetSession(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	response := ToSessionResponse(session)
	return &response, nil
}

// ListSessions returns import sessions with filtering and pagination
func (s *ImportService) ListSessions(ctx context.Context, tenantID uuid.UUID, filter SessionListFilter) ([]SessionListItem, int64, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	domainFilter := bulk.ImportSessionFilter{UserID: filter.UserID}
	if filter.Status != "" {
		status := bulk.ImportStatus(filter.Status)
		domainFilter.Status = &status
	}

	result, err := s.sessionRepo.FindAll(ctx, tenantID, domainFilter, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	return ToSessionListItems(result.Items), result.TotalCount, nil
}

// Cancel stops a running import session. Sessions running in this process
// are signalled and record the cancellation themselves between rows;
// sessions without a live runner are closed out directly.
func (s *ImportService) Cancel(ctx context.Context, tenantID, sessionID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessionRepo.FindByID(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.IsTerminal() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Session is already %s", session.Status))
	}

	if s.tracker.Cancel(sessionID) {
		s.logger.Info("import session cancellation requested",
			zap.String("session_id", sessionID.String()))
		response := ToSessionResponse(session)
		return &response, nil
	}

	// No live runner, e.g. the process restarted mid-import
	if err := session.Cancel(); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	response := ToSessionResponse(session)
	return &response, nil
}

// FailAbandoned closes sessions left running by a previous process. Their
// goroutines died with that process, so they can never finish on their own.
func (s *ImportService) FailAbandoned(ctx context.Context, tenantID uuid.UUID) (int, error) {
	sessions, err := s.sessionRepo.FindRunning(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, session := range sessions {
		if s.tracker.IsRunning(session.ID) {
			continue
		}
		if err := session.Fail("Interrupted by service restart"); err != nil {
			continue
		}
		if err := s.sessionRepo.Save(ctx, session); err != nil {
			return failed, err
		}
		failed++
	}

	return failed, nil
}

// Wait blocks until all background import runs have finished
func (s *ImportService) Wait() {
	s.wg.Wait()
}

// parsedFile is the outcome of parsing and header canonicalization
type parsedFile struct {
	rows    []*csvimport.Row
	columns map[string]bool // canonical columns present in the header
}

// parseFile parses the spreadsheet and remaps row data onto canonical
// column names. Unknown columns are dropped; missing required columns
// are an error.
func (s *ImportService) parseFile(format bulk.ImportFormat, data []byte) (*parsedFile, error) {
	var (
		headers []string
		rows    []*csvimport.Row
	)

	switch format {
	case bulk.ImportFormatXLSX:
		parser, err := csvimport.NewXLSXParser(data)
		if err != nil {
			return nil, err
		}
		if err := parser.ParseHeader(); err != nil {
			return nil, err
		}
		headers = parser.Headers()
		if rows, err = parser.ReadAllRows(); err != nil {
			return nil, err
		}
	default:
		parser, err := csvimport.ParseFromBytes(data)
		if err != nil {
			return nil, err
		}
		if err := parser.ParseHeader(); err != nil {
			return nil, err
		}
		headers = parser.Headers()
		if rows, err = parser.ReadAllRows(); err != nil {
			return nil, err
		}
	}

	mapping := make(map[string]string, len(headers)) // raw header -> canonical
	columns := make(map[string]bool)
	for _, h := range headers {
		if canonical, ok := headerAliases[normalizeHeader(h)]; ok {
			mapping[h] = canonical
			columns[canonical] = true
		}
	}
	for _, required := range requiredColumns {
		if !columns[required] {
			return nil, shared.NewDomainError("MISSING_COLUMN",
				fmt.Sprintf("Required column %q was not found in the header", required))
		}
	}

	// When two raw headers map to the same canonical column, the first
	// non-empty cell wins.
	for _, row := range rows {
		remapped := make(map[string]string, len(columns))
		for _, h := range headers {
			canonical, ok := mapping[h]
			if !ok {
				continue
			}
			value := row.Data[h]
			if existing, seen := remapped[canonical]; !seen || (existing == "" && value != "") {
				remapped[canonical] = value
			}
		}
		row.Data = remapped
	}

	return &parsedFile{rows: rows, columns: columns}, nil
}

// validationRules returns the field rules applied to every data row
func (s *ImportService) validationRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field("sku").Required().String().MaxLength(50).
			Pattern(`^[A-Za-z0-9_-]+$`, "letters, digits, underscores and hyphens").
			Unique().Build(),
		csvimport.Field("name").Required().String().MinLength(1).MaxLength(200).Build(),
		csvimport.Field("category").String().MaxLength(100).Build(),
		csvimport.Field("purchase_price").Decimal().MinValue(zero).Build(),
		csvimport.Field("selling_price").Decimal().MinValue(zero).Build(),
		csvimport.Field("payout").Decimal().MinValue(zero).Build(),
		csvimport.Field("stock").Int().MinValue(zero).Build(),
		csvimport.Field("supplier_url").String().MaxLength(500).Custom(validateSupplierURL).Build(),
		csvimport.Field("visibility").String().Custom(validateVisibility).Build(),
	}
}

// process validates every row, then writes the valid ones. All session
// saves use a fresh context so a cancelled run can still record its state.
func (s *ImportService) process(ctx context.Context, session *bulk.ImportSession, rows []*csvimport.Row, opts runOptions) {
	logger := s.logger.With(
		zap.String("session_id", session.ID.String()),
		zap.String("tenant_id", session.TenantID.String()))

	// Phase 1: field validation across the whole file
	validator := csvimport.NewFieldValidator(s.validationRules(), bulk.MaxRowErrors)
	invalid := make(map[int]bool)
	for _, row := range rows {
		if cancelled(ctx) {
			s.finishCancelled(session, logger)
			return
		}
		if !validator.ValidateRow(row) {
			invalid[row.LineNumber] = true
		}
	}
	firstErr := firstErrorByLine(validator.Errors().Errors())

	if session.DryRun {
		s.simulate(ctx, session, rows, invalid, firstErr, opts, logger)
		return
	}

	if err := session.StartImporting(len(rows)); err != nil {
		logger.Error("failed to start importing", zap.Error(err))
		return
	}
	if err := s.saveSession(session); err != nil {
		logger.Warn("failed to save import progress", zap.Error(err))
	}

	skus := collectValidSKUs(rows, invalid)
	existing, err := s.preloadBySKU(ctx, session.TenantID, skus)
	if err != nil {
		if ctx.Err() != nil {
			s.finishCancelled(session, logger)
			return
		}
		s.failRun(session, "Failed to load existing products", err, logger)
		return
	}

	categories, err := s.loadCategoryCache(ctx, session.TenantID)
	if err != nil {
		if ctx.Err() != nil {
			s.finishCancelled(session, logger)
			return
		}
		s.failRun(session, "Failed to load categories", err, logger)
		return
	}

	// Phase 2: write rows in file order
	for i, row := range rows {
		if cancelled(ctx) {
			s.finishCancelled(session, logger)
			return
		}

		if invalid[row.LineNumber] {
			recordValidationError(session, row.LineNumber, firstErr)
		} else {
			s.importRow(ctx, session, row, existing, categories, opts)
		}

		if (i+1)%progressSaveInterval == 0 {
			if err := s.saveSession(session); err != nil {
				logger.Warn("failed to save import progress", zap.Error(err))
			}
		}
	}

	if err := session.Complete(); err != nil {
		logger.Error("failed to complete import session", zap.Error(err))
	}
	if err := s.saveSession(session); err != nil {
		logger.Error("failed to save finished import session", zap.Error(err))
	}

	logger.Info("import session finished",
		zap.String("status", string(session.Status)),
		zap.Int("total_rows", session.TotalRows),
		zap.Int("success", session.SuccessCount),
		zap.Int("skipped", session.SkippedCount),
		zap.Int("errors", session.ErrorCount))
}

// simulate replays the conflict handling without writing anything, so a
// dry run reports the same counters a real run would produce.
func (s *ImportService) simulate(ctx context.Context, session *bulk.ImportSession, rows []*csvimport.Row, invalid map[int]bool, firstErr map[int]csvimport.RowError, opts runOptions, logger *zap.Logger) {
	skus := collectValidSKUs(rows, invalid)
	existing, err := s.preloadBySKU(ctx, session.TenantID, skus)
	if err != nil {
		if ctx.Err() != nil {
			s.finishCancelled(session, logger)
			return
		}
		s.failRun(session, "Failed to load existing products", err, logger)
		return
	}
	seen := make(map[string]bool, len(existing))
	for sku := range existing {
		seen[sku] = true
	}

	categories, err := s.loadCategoryCache(ctx, session.TenantID)
	if err != nil {
		if ctx.Err() != nil {
			s.finishCancelled(session, logger)
			return
		}
		s.failRun(session, "Failed to load categories", err, logger)
		return
	}
	knownCategories := make(map[string]bool, len(categories))
	for name := range categories {
		knownCategories[name] = true
	}

	for _, row := range rows {
		if cancelled(ctx) {
			s.finishCancelled(session, logger)
			return
		}

		if invalid[row.LineNumber] {
			recordValidationError(session, row.LineNumber, firstErr)
			continue
		}

		if name := row.Get("category"); name != "" {
			key := strings.ToLower(name)
			if !knownCategories[key] {
				if !opts.AutoCreateCategories {
					session.RecordError(row.LineNumber, "category",
						fmt.Sprintf("Category %q does not exist", name), name)
					continue
				}
				knownCategories[key] = true
			}
		}

		sku := strings.ToUpper(row.Get("sku"))
		if seen[sku] {
			switch session.ConflictMode {
			case bulk.ConflictModeSkip:
				session.RecordSkip()
			case bulk.ConflictModeFail:
				session.RecordError(row.LineNumber, "sku",
					fmt.Sprintf("Product with SKU %s already exists", sku), sku)
			case bulk.ConflictModeUpdate:
				session.RecordSuccess()
			}
			continue
		}

		seen[sku] = true
		session.RecordSuccess()
	}

	if err := session.Complete(); err != nil {
		logger.Error("failed to complete dry run", zap.Error(err))
	}
	if err := s.saveSession(session); err != nil {
		logger.Error("failed to save finished dry run", zap.Error(err))
	}

	logger.Info("import dry run finished",
		zap.String("status", string(session.Status)),
		zap.Int("total_rows", session.TotalRows),
		zap.Int("success", session.SuccessCount),
		zap.Int("skipped", session.SkippedCount),
		zap.Int("errors", session.ErrorCount))
}

// importRow routes one valid row through the conflict mode
func (s *ImportService) importRow(ctx context.Context, session *bulk.ImportSession, row *csvimport.Row, existing map[string]*catalog.Product, categories map[string]uuid.UUID, opts runOptions) {
	sku := strings.ToUpper(row.Get("sku"))

	if product, ok := existing[sku]; ok {
		switch session.ConflictMode {
		case bulk.ConflictModeSkip:
			session.RecordSkip()
		case bulk.ConflictModeFail:
			session.RecordError(row.LineNumber, "sku",
				fmt.Sprintf("Product with SKU %s already exists", sku), sku)
		case bulk.ConflictModeUpdate:
			s.updateProduct(ctx, session, row, product, categories, opts)
		}
		return
	}

	s.createProduct(ctx, session, row, existing, categories, opts)
}

// createProduct builds a new product from a row. Visibility is applied
// last so rows that archive a product can still set its fields.
func (s *ImportService) createProduct(ctx context.Context, session *bulk.ImportSession, row *csvimport.Row, existing map[string]*catalog.Product, categories map[string]uuid.UUID, opts runOptions) {
	line := row.LineNumber

	product, err := catalog.NewProduct(session.TenantID, row.Get("sku"), row.Get("name"))
	if err != nil {
		session.RecordError(line, "sku", domainMessage(err), row.Get("sku"))
		return
	}
	product.SetCreatedBy(session.UserID)

	if description := row.Get("description"); description != "" {
		if err := product.Update(product.Name, description); err != nil {
			session.RecordError(line, "description", domainMessage(err), "")
			return
		}
	}

	if name := row.Get("category"); name != "" {
		categoryID, err := s.resolveCategory(ctx, session.TenantID, name, categories, opts.AutoCreateCategories)
		if err != nil {
			session.RecordError(line, "category", domainMessage(err), name)
			return
		}
		if err := product.SetCategory(&categoryID); err != nil {
			session.RecordError(line, "category", domainMessage(err), name)
			return
		}
	}

	purchase := decimal.Zero
	selling := decimal.Zero
	hasPrices := false
	if v := row.Get("purchase_price"); v != "" {
		purchase, _ = decimal.NewFromString(v)
		hasPrices = true
	}
	if v := row.Get("selling_price"); v != "" {
		selling, _ = decimal.NewFromString(v)
		hasPrices = true
	}
	if hasPrices {
		if err := product.SetPrices(valueobject.NewMoneyUSD(purchase), valueobject.NewMoneyUSD(selling)); err != nil {
			session.RecordError(line, "selling_price", domainMessage(err), "")
			return
		}
	}

	if v := row.Get("payout"); v != "" {
		payout, _ := decimal.NewFromString(v)
		if err := product.SetPayout(valueobject.NewMoneyUSD(payout)); err != nil {
			session.RecordError(line, "payout", domainMessage(err), v)
			return
		}
	}

	if v := row.Get("stock"); v != "" {
		qty, _ := strconv.Atoi(v)
		if err := product.SetStock(qty); err != nil {
			session.RecordError(line, "stock", domainMessage(err), v)
			return
		}
	}

	if v := row.Get("supplier_url"); v != "" {
		if err := product.SetSupplierURL(v); err != nil {
			session.RecordError(line, "supplier_url", domainMessage(err), v)
			return
		}
	}

	if v := row.Get("visibility"); v != "" {
		if err := applyVisibility(product, catalog.ProductVisibility(strings.ToLower(v))); err != nil {
			session.RecordError(line, "visibility", domainMessage(err), v)
			return
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		session.RecordError(line, "", "Failed to save product: "+err.Error(), "")
		return
	}

	// Later rows with the same SKU hit the regular conflict handling
	existing[product.SKU] = product

	s.publishEvents(ctx, product)
	session.RecordSuccess()
}

// updateProduct applies the columns present in a row to an existing
// product, leaving absent columns untouched
func (s *ImportService) updateProduct(ctx context.Context, session *bulk.ImportSession, row *csvimport.Row, product *catalog.Product, categories map[string]uuid.UUID, opts runOptions) {
	line := row.LineNumber

	if product.IsArchived() {
		session.RecordError(line, "sku", "Archived products cannot be updated by import", product.SKU)
		return
	}

	name := row.Get("name")
	description := product.Description
	if v := row.Get("description"); v != "" {
		description = v
	}
	if name != product.Name || description != product.Description {
		if err := product.Update(name, description); err != nil {
			session.RecordError(line, "name", domainMessage(err), name)
			return
		}
	}

	if catName := row.Get("category"); catName != "" {
		categoryID, err := s.resolveCategory(ctx, session.TenantID, catName, categories, opts.AutoCreateCategories)
		if err != nil {
			session.RecordError(line, "category", domainMessage(err), catName)
			return
		}
		if product.CategoryID == nil || *product.CategoryID != categoryID {
			if err := product.SetCategory(&categoryID); err != nil {
				session.RecordError(line, "category", domainMessage(err), catName)
				return
			}
		}
	}

	purchase := product.PurchasePrice
	selling := product.SellingPrice
	hasPrices := false
	if v := row.Get("purchase_price"); v != "" {
		purchase, _ = decimal.NewFromString(v)
		hasPrices = true
	}
	if v := row.Get("selling_price"); v != "" {
		selling, _ = decimal.NewFromString(v)
		hasPrices = true
	}
	if hasPrices {
		if err := product.SetPrices(valueobject.NewMoneyUSD(purchase), valueobject.NewMoneyUSD(selling)); err != nil {
			session.RecordError(line, "selling_price", domainMessage(err), "")
			return
		}
	}

	if v := row.Get("payout"); v != "" {
		payout, _ := decimal.NewFromString(v)
		if err := product.SetPayout(valueobject.NewMoneyUSD(payout)); err != nil {
			session.RecordError(line, "payout", domainMessage(err), v)
			return
		}
	}

	if v := row.Get("stock"); v != "" {
		qty, _ := strconv.Atoi(v)
		if err := product.SetStock(qty); err != nil {
			session.RecordError(line, "stock", domainMessage(err), v)
			return
		}
	}

	if v := row.Get("supplier_url"); v != "" {
		if err := product.SetSupplierURL(v); err != nil {
			session.RecordError(line, "supplier_url", domainMessage(err), v)
			return
		}
	}

	if v := row.Get("visibility"); v != "" {
		if err := applyVisibility(product, catalog.ProductVisibility(strings.ToLower(v))); err != nil {
			session.RecordError(line, "visibility", domainMessage(err), v)
			return
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		session.RecordError(line, "", "Failed to save product: "+err.Error(), "")
		return
	}

	s.publishEvents(ctx, product)
	session.RecordSuccess()
}

// resolveCategory returns the category ID for a name, creating the
// category when auto-create is enabled
func (s *ImportService) resolveCategory(ctx context.Context, tenantID uuid.UUID, name string, cache map[string]uuid.UUID, autoCreate bool) (uuid.UUID, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}
	if !autoCreate {
		return uuid.Nil, shared.NewDomainError("CATEGORY_NOT_FOUND",
			fmt.Sprintf("Category %q does not exist", name))
	}

	category, err := catalog.NewCategory(tenantID, name)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return uuid.Nil, err
	}
	s.publishEvents(ctx, category)

	cache[key] = category.ID
	return category.ID, nil
}

// preloadBySKU loads existing products for the given SKUs in chunks
func (s *ImportService) preloadBySKU(ctx context.Context, tenantID uuid.UUID, skus []string) (map[string]*catalog.Product, error) {
	existing := make(map[string]*catalog.Product, len(skus))
	for start := 0; start < len(skus); start += skuPreloadChunk {
		end := start + skuPreloadChunk
		if end > len(skus) {
			end = len(skus)
		}
		products, err := s.productRepo.FindBySKUs(ctx, tenantID, skus[start:end])
		if err != nil {
			return nil, err
		}
		for i := range products {
			existing[products[i].SKU] = &products[i]
		}
	}
	return existing, nil
}

// loadCategoryCache maps lowercased category names to their IDs
func (s *ImportService) loadCategoryCache(ctx context.Context, tenantID uuid.UUID) (map[string]uuid.UUID, error) {
	categories, err := s.categoryRepo.FindAllForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return nil, err
	}
	cache := make(map[string]uuid.UUID, len(categories))
	for _, category := range categories {
		cache[strings.ToLower(category.Name)] = category.ID
	}
	return cache, nil
}

// failUpload records an unusable file on the session and returns the
// report instead of an error, so clients get the session ID
func (s *ImportService) failUpload(ctx context.Context, session *bulk.ImportSession, reason string) (*SessionResponse, error) {
	_ = session.Fail(reason)
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("import session rejected",
		zap.String("session_id", session.ID.String()),
		zap.String("reason", reason))

	response := ToSessionResponse(session)
	return &response, nil
}

// finishCancelled records a cancellation signalled between rows
func (s *ImportService) finishCancelled(session *bulk.ImportSession, logger *zap.Logger) {
	if err := session.Cancel(); err != nil {
		logger.Warn("failed to mark session cancelled", zap.Error(err))
	}
	if err := s.saveSession(session); err != nil {
		logger.Error("failed to save cancelled session", zap.Error(err))
	}
	logger.Info("import session cancelled",
		zap.Int("processed_rows", session.ProcessedRows()))
}

// failRun aborts a run on an infrastructure error
func (s *ImportService) failRun(session *bulk.ImportSession, reason string, cause error, logger *zap.Logger) {
	if err := session.Fail(reason); err != nil {
		logger.Warn("failed to mark session failed", zap.Error(err))
	}
	if err := s.saveSession(session); err != nil {
		logger.Error("failed to save failed session", zap.Error(err))
	}
	logger.Error("import session failed", zap.String("reason", reason), zap.Error(cause))
}

// saveSession persists the session on a fresh context, so progress and
// final states survive run cancellation
func (s *ImportService) saveSession(session *bulk.ImportSession) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.sessionRepo.Save(ctx, session)
}

// publishEvents forwards accumulated domain events to the event bus
func (s *ImportService) publishEvents(ctx context.Context, aggregate interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}

// sniffFormat infers the format from the extension, correcting CSV
// uploads that are actually zip containers (renamed XLSX workbooks)
func sniffFormat(filename string, data []byte) (bulk.ImportFormat, error) {
	format, err := bulk.FormatFromFilename(filename)
	if err != nil {
		return "", err
	}
	if format == bulk.ImportFormatCSV && bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return bulk.ImportFormatXLSX, nil
	}
	return format, nil
}

// contentTypeForFormat returns the MIME type used when storing the upload
func contentTypeForFormat(format bulk.ImportFormat) string {
	if format == bulk.ImportFormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// normalizeHeader prepares a raw header cell for alias lookup
func normalizeHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// validateSupplierURL requires an absolute http(s) URL
func validateSupplierURL(value string) error {
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("supplier_url must be a valid http(s) URL")
	}
	return nil
}

// validateVisibility requires a known visibility value
func validateVisibility(value string) error {
	if !catalog.ProductVisibility(strings.ToLower(value)).IsValid() {
		return fmt.Errorf("visibility must be one of draft, active, hidden, archived")
	}
	return nil
}

// applyVisibility transitions a product to the target visibility
func applyVisibility(p *catalog.Product, target catalog.ProductVisibility) error {
	if p.Visibility == target {
		return nil
	}
	switch target {
	case catalog.ProductVisibilityActive:
		return p.Activate()
	case catalog.ProductVisibilityHidden:
		return p.Hide()
	case catalog.ProductVisibilityArchived:
		return p.Archive()
	case catalog.ProductVisibilityDraft:
		return shared.NewDomainError("INVALID_VISIBILITY", "Products cannot be moved back to draft")
	}
	return nil
}

// cancelled reports whether the run context has been cancelled
func cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// collectValidSKUs gathers the distinct uppercased SKUs of valid rows
func collectValidSKUs(rows []*csvimport.Row, invalid map[int]bool) []string {
	skus := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if invalid[row.LineNumber] {
			continue
		}
		sku := strings.ToUpper(row.Get("sku"))
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true
		skus = append(skus, sku)
	}
	return skus
}

// firstErrorByLine indexes the first retained validation error per line
func firstErrorByLine(errs []csvimport.RowError) map[int]csvimport.RowError {
	first := make(map[int]csvimport.RowError, len(errs))
	for _, e := range errs {
		if _, ok := first[e.Row]; !ok {
			first[e.Row] = e
		}
	}
	return first
}

// recordValidationError writes a phase-1 validation failure to the session
func recordValidationError(session *bulk.ImportSession, line int, firstErr map[int]csvimport.RowError) {
	if e, ok := firstErr[line]; ok {
		session.RecordError(line, e.Column, e.Message, e.Value)
		return
	}
	// Detail was truncated by the error cap; the row still counts
	session.RecordError(line, "", "Row failed validation", "")
}

// domainMessage extracts a clean message from domain errors
func domainMessage(err error) string {
	var derr *shared.DomainError
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}

// failReasonFor maps parser errors to session fail reasons
func failReasonFor(err error) string {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		return "File is empty"
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		return "File is not valid UTF-8"
	case errors.Is(err, csvimport.ErrMissingHeader):
		return "File is missing a header row"
	case errors.Is(err, csvimport.ErrInvalidWorkbook):
		return "File is not a valid XLSX workbook"
	}
	var derr *shared.DomainError
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}
