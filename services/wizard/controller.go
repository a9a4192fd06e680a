package wizard

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"quotewizard/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the wizard position: one value per step plus the terminal submitted state.
type State int

const (
	StateAddress State = iota
	StateItems
	StateDateTime
	StatePayment
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateAddress:
		return string(models.StepAddress)
	case StateItems:
		return string(models.StepItems)
	case StateDateTime:
		return string(models.StepDateTime)
	case StatePayment:
		return string(models.StepPayment)
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Ordinal returns the step ordinal of s. The terminal state has none.
func (s State) Ordinal() (int, bool) {
	if s >= StateAddress && s < StateSubmitted {
		return int(s), true
	}
	return -1, false
}

// MsgGatewayUnavailable is the retryable, step-level message shown when the gateway cannot be reached.
const MsgGatewayUnavailable = "We could not reach our booking service. Your details are saved, please try again."

// MsgHandoffFailed is shown when the payment went through but the booking could not be recorded yet.
const MsgHandoffFailed = "Your payment is set up but we could not finish recording your booking. Please try again."

// MsgPaymentRejected is used when the gateway rejects without a reason.
const MsgPaymentRejected = "Your payment could not be set up"

const defaultSubmitTimeout = 20 * time.Second

// Dependencies are the collaborators shared by every controller.
type Dependencies struct {
	Validator     *Validator
	Gateway       Gateway
	Checkout      Checkout // optional
	Logger        *zap.Logger
	SubmitTimeout time.Duration
	NewKey        func() string // idempotency keys; defaults to uuid
}

// Outcome describes the session after a navigation event.
type Outcome struct {
	State       State             `json:"state"`
	Advanced    bool              `json:"advanced"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Error       string            `json:"error,omitempty"`
	Retryable   bool              `json:"retryable,omitempty"`
	Booking     *models.Booking   `json:"booking,omitempty"`
}

type settledSubmission struct {
	key    string
	result models.SubmissionResult
}

type submission struct {
	ctx        context.Context
	cancel     context.CancelFunc
	key        string
	draft      models.BookingDraft
	generation uint64
	cached     *models.SubmissionResult
}

// Controller is the state machine for one customer's wizard session.
// It exclusively owns the session; collaborators only ever see draft copies.
type Controller struct {
	mu sync.Mutex

	id        string
	state     State
	store     *DraftStore
	visited   map[int]bool
	dirty     map[models.StepID]bool
	createdAt time.Time
	updatedAt time.Time

	fieldErrors map[string]string
	errMsg      string
	retryable   bool

	idempotencyKey string
	pending        bool
	generation     uint64
	cancelSubmit   context.CancelFunc
	settled        *settledSubmission
	discarded      bool
	handedOff      bool

	quote   *models.Quote
	booking *models.Booking

	validator *Validator
	gateway   Gateway
	checkout  Checkout
	logger    *zap.Logger
	timeout   time.Duration
	newKey    func() string
}

// NewController starts a session on the address step with an empty draft.
func NewController(id string, deps Dependencies) *Controller {
	if id == "" {
		id = uuid.New().String()
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator(nil, nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.SubmitTimeout <= 0 {
		deps.SubmitTimeout = defaultSubmitTimeout
	}
	if deps.NewKey == nil {
		deps.NewKey = uuid.NewString
	}

	now := time.Now()
	return &Controller{
		id:        id,
		state:     StateAddress,
		store:     NewDraftStore(),
		visited:   map[int]bool{0: true},
		dirty:     map[models.StepID]bool{},
		createdAt: now,
		updatedAt: now,
		validator: deps.Validator,
		gateway:   deps.Gateway,
		checkout:  deps.Checkout,
		logger:    deps.Logger.With(zap.String("session", id)),
		timeout:   deps.SubmitTimeout,
		newKey:    deps.NewKey,
	}
}

func (c *Controller) ID() string {
	return c.id
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Draft() models.BookingDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get()
}

// IdempotencyKey returns the key the next submission will carry, or "" if none was issued yet.
func (c *Controller) IdempotencyKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idempotencyKey
}

// Pending reports whether a gateway submission is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// FieldChange merges patch into the draft. It never moves the step pointer.
func (c *Controller) FieldChange(patch models.DraftPatch) (models.BookingDraft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.discarded:
		return models.BookingDraft{}, ErrSessionDiscarded
	case c.state == StateSubmitted:
		return c.store.Get(), ErrSessionSubmitted
	case c.pending:
		return c.store.Get(), ErrSubmissionPending
	}

	for _, field := range patch.Fields() {
		owner, ok := OwnerOf(field)
		if !ok || !c.visited[owner.Ordinal] {
			return c.store.Get(), &FieldNotEditableError{Field: field}
		}
	}

	changed := c.store.Changed(patch)
	draft := c.store.Update(patch)
	if len(changed) == 0 {
		return draft, nil
	}

	// Revalidated lazily on the next Next.
	for _, field := range changed {
		owner, _ := OwnerOf(field)
		c.dirty[owner.ID] = true
		delete(c.fieldErrors, field)
	}
	// A different draft is a different request.
	c.idempotencyKey = ""
	c.settled = nil
	c.errMsg = ""
	c.retryable = false
	c.updatedAt = time.Now()

	c.logger.Debug("draft updated", zap.Strings("fields", changed))
	return draft, nil
}

// Back moves to the previous step without validation. It is a no-op on the first step.
func (c *Controller) Back() (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discarded {
		return Outcome{}, ErrSessionDiscarded
	}
	if c.state == StateSubmitted {
		return c.outcomeLocked(), ErrSessionSubmitted
	}
	if c.state == StateAddress {
		return c.outcomeLocked(), nil
	}
	if c.pending {
		// The in-flight response no longer belongs to the step the customer is on.
		c.generation++
	}
	c.state--
	c.clearErrorsLocked()
	c.updatedAt = time.Now()
	return c.outcomeLocked(), nil
}

// Next validates the current step and advances. On the payment step it submits the
// draft to the gateway and only reaches submitted when the gateway accepts.
// In submitted with the checkout handoff still outstanding, Next retries the handoff.
func (c *Controller) Next(ctx context.Context) (Outcome, error) {
	if booking, ok := c.outstandingHandoff(); ok {
		return c.handoff(ctx, booking), nil
	}

	out, sub, err := c.advance(ctx)
	if err != nil || sub == nil {
		return out, err
	}

	result := c.callGateway(sub)

	out, booking, err := c.settle(sub, result)
	if err != nil || booking == nil {
		return out, err
	}
	return c.handoff(ctx, *booking), nil
}

// HandoffPending reports whether a submitted booking has not reached checkout yet.
func (c *Controller) HandoffPending() bool {
	_, ok := c.outstandingHandoff()
	return ok
}

// RetryHandoff hands an outstanding booking to checkout again. It reports
// whether the booking is now handed off.
func (c *Controller) RetryHandoff(ctx context.Context) bool {
	booking, ok := c.outstandingHandoff()
	if !ok {
		return true
	}
	out := c.handoff(ctx, booking)
	return !out.Retryable
}

func (c *Controller) outstandingHandoff() (models.Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.discarded || c.state != StateSubmitted || c.handedOff || c.booking == nil {
		return models.Booking{}, false
	}
	return *c.booking, true
}

// handoff passes the booking to checkout outside the lock. A failure keeps the
// session alive with a retryable error; the payment is already initiated, so
// the booking must not be dropped.
func (c *Controller) handoff(ctx context.Context, booking models.Booking) Outcome {
	var err error
	if c.checkout != nil {
		err = c.checkout.Handoff(context.WithoutCancel(ctx), booking)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.logger.Error("checkout handoff failed",
			zap.String("booking", booking.ID),
			zap.String("idempotency_key", booking.IdempotencyKey),
			zap.Error(err))
		c.errMsg = MsgHandoffFailed
		c.retryable = true
	} else {
		c.handedOff = true
		c.errMsg = ""
		c.retryable = false
	}
	c.updatedAt = time.Now()

	out := c.outcomeLocked()
	out.Advanced = true
	out.Booking = &booking
	return out
}

func (c *Controller) advance(ctx context.Context) (Outcome, *submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discarded {
		return Outcome{}, nil, ErrSessionDiscarded
	}
	if c.state == StateSubmitted {
		return c.outcomeLocked(), nil, invariantf("next called on submitted session %s", c.id)
	}

	ordinal, _ := c.state.Ordinal()
	step, _ := StepAt(ordinal)
	atPayment := step.ID == models.StepPayment
	if atPayment && c.pending {
		return c.outcomeLocked(), nil, ErrSubmissionPending
	}
	draft := c.store.Get()
	today := c.validator.Today()

	// Earlier steps are rechecked when edited since they were accepted,
	// and all of them before anything is sent to the gateway.
	errs := map[string]string{}
	var checked []models.StepID
	for ord := 0; ord < ordinal; ord++ {
		prev, _ := StepAt(ord)
		if !atPayment && !c.dirty[prev.ID] {
			continue
		}
		mergeErrors(errs, ValidateStep(prev.ID, draft, today))
		checked = append(checked, prev.ID)
	}
	if !atPayment {
		mergeErrors(errs, ValidateStep(step.ID, draft, today))
		checked = append(checked, step.ID)
	}

	if len(errs) > 0 {
		c.fieldErrors = errs
		c.errMsg = ""
		c.retryable = false
		c.updatedAt = time.Now()
		return c.outcomeLocked(), nil, nil
	}
	for _, id := range checked {
		delete(c.dirty, id)
	}

	if !atPayment {
		c.state = State(ordinal + 1)
		c.visited[ordinal+1] = true
		c.clearErrorsLocked()
		c.updatedAt = time.Now()
		out := c.outcomeLocked()
		out.Advanced = true
		return out, nil, nil
	}

	if c.gateway == nil {
		return c.outcomeLocked(), nil, invariantf("session %s has no gateway", c.id)
	}

	if c.idempotencyKey == "" {
		c.idempotencyKey = c.newKey()
	}
	sub := &submission{
		key:   c.idempotencyKey,
		draft: draft,
	}
	if c.settled != nil && c.settled.key == sub.key {
		cached := c.settled.result
		sub.cached = &cached
	}
	sub.ctx, sub.cancel = context.WithTimeout(ctx, c.timeout)

	c.pending = true
	c.generation++
	sub.generation = c.generation
	c.cancelSubmit = sub.cancel
	c.updatedAt = time.Now()

	c.logger.Info("submitting draft to gateway", zap.String("idempotency_key", sub.key))
	return c.outcomeLocked(), sub, nil
}

func (c *Controller) callGateway(sub *submission) models.SubmissionResult {
	defer sub.cancel()
	if sub.cached != nil {
		return *sub.cached
	}

	result := c.gateway.Submit(sub.ctx, sub.draft, sub.key)
	if result.Status == "" {
		result = models.Unavailable("gateway returned no outcome")
	}
	if errors.Is(sub.ctx.Err(), context.DeadlineExceeded) && !result.Settled() {
		result = models.Unavailable("gateway timed out")
	}
	if result.Status == models.SubmissionAccepted && result.PaymentToken == "" {
		result = models.Unavailable("gateway accepted without a payment token")
	}
	return result
}

func (c *Controller) settle(sub *submission, result models.SubmissionResult) (Outcome, *models.Booking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discarded {
		c.logger.Info("ignoring gateway response for discarded session",
			zap.String("idempotency_key", sub.key),
			zap.String("status", string(result.Status)))
		return Outcome{}, nil, ErrSessionDiscarded
	}

	c.pending = false
	c.cancelSubmit = nil
	c.updatedAt = time.Now()

	if sub.generation != c.generation || c.state != StatePayment {
		// Customer went back while waiting. Keep an acceptance for this key so
		// returning to payment with an unchanged draft resolves to the same token.
		if result.Status == models.SubmissionAccepted && sub.key == c.idempotencyKey {
			c.settled = &settledSubmission{key: sub.key, result: result}
		}
		c.logger.Info("gateway response arrived after leaving payment step",
			zap.String("idempotency_key", sub.key),
			zap.String("status", string(result.Status)))
		return c.outcomeLocked(), nil, nil
	}

	switch result.Status {
	case models.SubmissionAccepted:
		c.store.setPaymentToken(result.PaymentToken)
		if res := c.validator.ValidateStep(models.StepPayment, c.store.Get()); !res.IsValid() {
			return c.outcomeLocked(), nil, invariantf("payment step invalid after acceptance for session %s", c.id)
		}
		c.state = StateSubmitted
		c.quote = result.Quote
		c.settled = nil
		c.clearErrorsLocked()
		c.booking = &models.Booking{
			ID:             uuid.New().String(),
			SessionID:      c.id,
			IdempotencyKey: sub.key,
			Draft:          c.store.Get(),
			PaymentToken:   result.PaymentToken,
			Quote:          result.Quote,
			Status:         models.BookingStatusSubmitted,
			CreatedAt:      time.Now(),
		}
		c.logger.Info("quote submitted",
			zap.String("booking", c.booking.ID),
			zap.String("idempotency_key", sub.key))

		out := c.outcomeLocked()
		out.Advanced = true
		booking := *c.booking
		out.Booking = &booking
		return out, &booking, nil

	case models.SubmissionRejected:
		reason := result.Reason
		if reason == "" {
			reason = MsgPaymentRejected
		}
		c.fieldErrors = map[string]string{models.FieldPaymentToken: reason}
		c.errMsg = ""
		c.retryable = false
		// Nothing was charged; the corrected retry is a new request.
		c.idempotencyKey = ""
		c.logger.Info("gateway rejected submission",
			zap.String("idempotency_key", sub.key),
			zap.String("reason", reason))

	default:
		c.fieldErrors = nil
		c.errMsg = MsgGatewayUnavailable
		c.retryable = true
		c.logger.Warn("gateway unavailable",
			zap.String("idempotency_key", sub.key),
			zap.String("reason", result.Reason))
	}
	return c.outcomeLocked(), nil, nil
}

// Discard ends the session. An in-flight submission is cancelled and its response ignored.
func (c *Controller) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.discarded {
		return
	}
	c.discarded = true
	if c.cancelSubmit != nil {
		c.cancelSubmit()
		c.cancelSubmit = nil
	}
}

// Booking returns the booking produced by a successful submission.
func (c *Controller) Booking() (models.Booking, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.booking == nil {
		return models.Booking{}, false
	}
	return *c.booking, true
}

// View renders the session for the page shell.
func (c *Controller) View() models.ShellView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := models.ShellView{
		SessionID:      c.id,
		Steps:          StepsInOrder(),
		Draft:          c.store.Get(),
		FieldErrors:    copyErrors(c.fieldErrors),
		Error:          c.errMsg,
		Retryable:      c.retryable,
		Pending:        c.pending,
		Submitted:      c.state == StateSubmitted,
		Quote:          c.quote,
		SuppressFooter: true,
		UpdatedAt:      c.updatedAt,
	}
	if ordinal, ok := c.state.Ordinal(); ok {
		step, _ := StepAt(ordinal)
		view.Step = &step
	}
	for ord := range c.visited {
		view.Visited = append(view.Visited, ord)
	}
	sort.Ints(view.Visited)
	return view
}

func (c *Controller) outcomeLocked() Outcome {
	return Outcome{
		State:       c.state,
		FieldErrors: copyErrors(c.fieldErrors),
		Error:       c.errMsg,
		Retryable:   c.retryable,
	}
}

func (c *Controller) clearErrorsLocked() {
	c.fieldErrors = nil
	c.errMsg = ""
	c.retryable = false
}

func mergeErrors(dst map[string]string, res models.ValidationResult) {
	for field, msg := range res.FieldErrors {
		dst[field] = msg
	}
}

func copyErrors(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
