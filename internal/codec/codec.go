// Package codec maps nested product values to and from the flat scalar
// columns they are stored in.
//
// Two encodings live here:
//
//   - the category id set, stored in products.category_ids as an ascending,
//     de-duplicated, comma-separated list ("1,3,7");
//   - the price tier aggregate produced by the product listing query, where
//     tiers are joined by ';' and each tier is "price:quantity" ("9.99:100;8.50:500").
//
// Raw delimited strings must not leave this package.
package codec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_catalog/internal/models"
	"github.com/GTDGit/gtd_catalog/internal/utils"
)

const (
	categorySep = ","
	tierSep     = ";"
	fieldSep    = ":"
)

// EncodeCategoryIDs renders ids in ascending order with duplicates removed.
// An empty set encodes to "".
func EncodeCategoryIDs(ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, categorySep)
}

// DecodeCategoryIDs parses a stored category id list. Empty segments are
// skipped; any other segment that is not a base-10 integer fails with
// utils.ErrMalformedEncoding. The result is never nil.
func DecodeCategoryIDs(s string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, seg := range strings.Split(s, categorySep) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		id, err := strconv.ParseInt(seg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: category id segment %q is not an integer", utils.ErrMalformedEncoding, seg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// EncodePriceTiers renders tiers in the aggregate form the listing query
// produces. Order is preserved.
func EncodePriceTiers(tiers []models.PriceTier) (string, error) {
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		if err := CheckPriceTier(t); err != nil {
			return "", err
		}
		parts = append(parts, t.Price.String()+fieldSep+strconv.Itoa(t.Quantity))
	}
	return strings.Join(parts, tierSep), nil
}

// DecodePriceTiers parses a price tier aggregate. An empty input decodes to
// an empty, non-nil slice.
func DecodePriceTiers(s string) ([]models.PriceTier, error) {
	tiers := make([]models.PriceTier, 0)
	for _, seg := range strings.Split(s, tierSep) {
		if seg == "" {
			continue
		}
		fields := strings.Split(seg, fieldSep)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: price tier %q must hold exactly one %q", utils.ErrMalformedEncoding, seg, fieldSep)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: price %q is not a decimal", utils.ErrMalformedEncoding, fields[0])
		}
		qty, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: quantity %q is not an integer", utils.ErrMalformedEncoding, fields[1])
		}
		tiers = append(tiers, models.PriceTier{Price: price, Quantity: qty})
	}
	return tiers, nil
}

// CheckPriceTier rejects a tier whose rendered fields would collide with the
// aggregate delimiters.
func CheckPriceTier(t models.PriceTier) error {
	for _, v := range []string{t.Price.String(), strconv.Itoa(t.Quantity)} {
		if strings.ContainsAny(v, tierSep+fieldSep) {
			return fmt.Errorf("%w: value %q contains a reserved delimiter", utils.ErrMalformedEncoding, v)
		}
	}
	return nil
}
