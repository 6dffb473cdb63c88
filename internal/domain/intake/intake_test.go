package intake

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/printchain/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSender(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "orders@bradford.test", want: "orders@bradford.test"},
		{raw: "Bradford Orders <Orders@Bradford.test>", want: "orders@bradford.test"},
		{raw: `"Orders, Bradford" <orders@bradford.test>`, want: "orders@bradford.test"},
		{raw: "  <orders@bradford.test>  ", want: "orders@bradford.test"},
		{raw: "broken <orders@bradford.test", want: "broken <orders@bradford.test"},
		{raw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSender(tt.raw))
		})
	}
}

func TestAllowList(t *testing.T) {
	list := NewAllowList([]string{"Bradford <orders@bradford.test>", "po@bradford.test"})

	assert.True(t, list.Allows("orders@bradford.test"))
	assert.True(t, list.Allows("Someone Else <PO@bradford.test>"))
	assert.False(t, list.Allows("orders@bradford.test.evil"))
	assert.False(t, list.Allows("x-orders@bradford.test"))
	assert.False(t, list.Allows(""))
}

func TestMatchCustomerCode(t *testing.T) {
	codes := []string{"acme", "ACME2", " "}

	code, ok := MatchCustomerCode("PO 1001 for ACME2 brochures", codes)
	assert.True(t, ok)
	assert.Equal(t, "ACME2", code)

	code, ok = MatchCustomerCode("re: acme postcards", codes)
	assert.True(t, ok)
	assert.Equal(t, "ACME", code)

	_, ok = MatchCustomerCode("weekly newsletter", codes)
	assert.False(t, ok)
}

func TestDedupKey(t *testing.T) {
	at := time.Unix(1760000000, 0)
	assert.Equal(t, "BRAD-ACME-1001", DedupKey("brad", "acme", "1001", at))
	assert.Equal(t, "BRAD-ACME-1760000000", DedupKey("BRAD", "ACME", "  ", at))
}

func TestExtractedPO_Validate(t *testing.T) {
	ok := ExtractedPO{CustomerCode: "ACME", PONumber: "1", Amount: decimal.NewFromInt(10)}
	assert.NoError(t, ok.Validate())

	zero := ok
	zero.Amount = decimal.Zero
	assert.True(t, errors.Is(zero.Validate(), ErrParseValidationFailed))

	anonymous := ok
	anonymous.CustomerCode = ""
	assert.True(t, errors.Is(anonymous.Validate(), ErrParseValidationFailed))
}

func TestNewEmailEvent_KeepsFirstPDF(t *testing.T) {
	e := NewEmailEvent("bradford", "orders@bradford.test", "PO ACME", "", []Attachment{
		{Filename: "logo.png", ContentType: "image/png"},
		{Filename: "po-1001.PDF", ContentType: "application/octet-stream", Content: []byte("%PDF-1")},
		{Filename: "po-1002.pdf", ContentType: "application/pdf"},
	})
	require.NotNil(t, e.Attachment)
	assert.Equal(t, "po-1001.PDF", e.Attachment.Filename)
	assert.Equal(t, StateReceived, e.State)
	assert.Equal(t, ChannelEmail, e.Channel)
}

func TestInboundEvent_HappyPath(t *testing.T) {
	e := NewEmailEvent("bradford", "orders@bradford.test", "PO ACME", "", nil)

	require.NoError(t, e.Validated("ACME"))
	require.NoError(t, e.Parsed(ExtractedPO{CustomerCode: "ACME", PONumber: "1001", Amount: decimal.NewFromInt(5)}))
	require.NoError(t, e.DedupChecked("BRAD-ACME-1001"))
	poID := uuid.New()
	require.NoError(t, e.Complete(poID, true))

	assert.Equal(t, StateCreated, e.State)
	assert.Equal(t, poID, *e.PurchaseOrderID)
	assert.NotNil(t, e.ProcessedAt)
	assert.True(t, e.State.IsTerminal())
}

func TestInboundEvent_InvalidTransitions(t *testing.T) {
	e := NewEmailEvent("bradford", "x@y.test", "", "", nil)

	assert.True(t, errors.Is(e.Parsed(ExtractedPO{}), shared.ErrInvalidState))
	assert.True(t, errors.Is(e.Complete(uuid.New(), true), shared.ErrInvalidState))

	require.NoError(t, e.Reject(RejectInvalidSender))
	assert.Equal(t, RejectInvalidSender, e.RejectReason)
	assert.True(t, errors.Is(e.Restart(), shared.ErrInvalidState), "rejections are final")
}

func TestInboundEvent_RestartFromReview(t *testing.T) {
	e := NewEmailEvent("bradford", "x@y.test", "ACME", "", nil)
	require.NoError(t, e.Validated("ACME"))
	require.NoError(t, e.NeedsReview(nil, ErrParseValidationFailed))
	assert.Equal(t, ErrParseValidationFailed.Error(), e.LastError)

	require.NoError(t, e.Restart())
	assert.Equal(t, StateReceived, e.State)
	assert.Nil(t, e.ProcessedAt)
}

func TestState_Transitions(t *testing.T) {
	assert.True(t, StateReceived.CanTransitionTo(StateValidated))
	assert.True(t, StateValidated.CanTransitionTo(StateFailed))
	assert.False(t, StateCreated.CanTransitionTo(StateReceived))
	assert.False(t, StateParsed.CanTransitionTo(StateCreated))
	assert.False(t, StateDedupChecked.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
}
