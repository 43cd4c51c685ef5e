package normalization

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"order-ledger/internal/domain"
	"order-ledger/internal/logger"
)

// Options configures a Normalizer.
type Options struct {
	// Policy applied to records that fail to normalize.
	Policy domain.ErrorPolicy
	// Location for dates that carry no zone offset. Defaults to UTC.
	Location *time.Location
	// Logger receives one warning per skipped record.
	Logger *slog.Logger
}

// Normalizer converts raw provider records into canonical orders.
type Normalizer struct {
	policy   domain.ErrorPolicy
	location *time.Location
	logger   *slog.Logger
}

// NewNormalizer creates a normalizer with the given options.
func NewNormalizer(opts Options) *Normalizer {
	n := &Normalizer{
		policy:   opts.Policy,
		location: opts.Location,
		logger:   logger.OrDiscard(opts.Logger),
	}
	if n.policy == "" {
		n.policy = domain.ErrorPolicyAbort
	}
	if n.location == nil {
		n.location = time.UTC
	}
	return n
}

// Policy returns the configured error policy.
func (n *Normalizer) Policy() domain.ErrorPolicy {
	return n.policy
}

// Result is the outcome of normalizing a batch.
type Result struct {
	Orders  []domain.Order
	Skipped []*MalformedRecordError // only populated under ErrorPolicySkip
}

// Normalize converts a single record. index is the record's position in
// its batch and is used to identify it when the Id is unusable.
func (n *Normalizer) Normalize(index int, raw domain.RawRecord) (domain.Order, error) {
	var o domain.Order

	fail := func(field string, value json.RawMessage, err error) (domain.Order, error) {
		e := &MalformedRecordError{
			Index: index,
			Field: field,
			Value: displayValue(value),
			Err:   err,
		}
		if field != "Id" {
			id := o.ID
			e.ID = &id
		}
		return domain.Order{}, e
	}

	var err error
	if o.ID, err = parseInteger(raw.ID); err != nil {
		return fail("Id", raw.ID, err)
	}
	if o.BuyDate, err = parseDate(raw.BuyDate, n.location); err != nil {
		return fail("BuyDate", raw.BuyDate, err)
	}
	if o.SaleDate, err = parseOptionalDate(raw.SaleDate, n.location); err != nil {
		return fail("SaleDate", raw.SaleDate, err)
	}
	if o.FilledValue, err = parseDecimal(raw.FilledValue); err != nil {
		return fail("FilledValue", raw.FilledValue, err)
	}
	if o.FilledValue.IsNegative() {
		return fail("FilledValue", raw.FilledValue, errNegative)
	}
	if o.PurchasePrice, err = parseDecimal(raw.PurchasePrice); err != nil {
		return fail("PurchasePrice", raw.PurchasePrice, err)
	}
	if o.ActualSalePrice, err = parseOptionalDecimal(raw.ActualSalePrice); err != nil {
		return fail("ActualSalePrice", raw.ActualSalePrice, err)
	}
	if o.TargetedProfitPerc, err = parseDecimal(raw.TargetedProfitPerc); err != nil {
		return fail("TargetedProfitPerc", raw.TargetedProfitPerc, err)
	}
	if o.ProfitFlag, err = parseString(raw.ProfitFlag); err != nil {
		return fail("ProfitFlag", raw.ProfitFlag, err)
	}
	if o.GrossProfit, err = parseOptionalDecimal(raw.GrossProfit); err != nil {
		return fail("GrossProfit", raw.GrossProfit, err)
	}
	if o.ProfitMinusFees, err = parseOptionalDecimal(raw.ProfitMinusFees); err != nil {
		return fail("ProfitMinusFees", raw.ProfitMinusFees, err)
	}
	if o.DaysBetweenBuyAndSale, err = parseOptionalInteger(raw.DaysBetweenCreateAndSale); err != nil {
		return fail("DaysBetweenCreateAndSale", raw.DaysBetweenCreateAndSale, err)
	}

	return o, nil
}

// NormalizeBatch converts every record in raws.
//
// Under ErrorPolicyAbort the first malformed record fails the whole batch
// and no orders are returned. Under ErrorPolicySkip malformed records are
// dropped, logged and reported in Result.Skipped; the remaining orders keep
// their input order.
func (n *Normalizer) NormalizeBatch(ctx context.Context, raws []domain.RawRecord) (*Result, error) {
	result := &Result{Orders: make([]domain.Order, 0, len(raws))}

	for i, raw := range raws {
		o, err := n.Normalize(i, raw)
		if err == nil {
			result.Orders = append(result.Orders, o)
			continue
		}

		mre, ok := err.(*MalformedRecordError)
		if !ok {
			return nil, err
		}

		if n.policy == domain.ErrorPolicyAbort {
			n.logger.ErrorContext(ctx, "Malformed record, aborting batch", mre.LogAttrs()...)
			return nil, fmt.Errorf("normalize batch: %w", mre)
		}

		n.logger.WarnContext(ctx, "Malformed record skipped", mre.LogAttrs()...)
		result.Skipped = append(result.Skipped, mre)
	}

	return result, nil
}

// DecodeRecords decodes the provider wire format: one JSON array of
// order objects.
func DecodeRecords(data []byte) ([]domain.RawRecord, error) {
	var raws []domain.RawRecord
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode order records: %w", err)
	}
	return raws, nil
}
