package clean

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"printbase/internal"
)

var (
	reCurrencyJunk = regexp.MustCompile(`[£$€,]`)
	reImageURL     = regexp.MustCompile(`\((https?://[^)]+)\)`)
)

// Spreadsheet cells that mean "no value". Formula errors export as the
// literal "#ERROR!".
func isMissing(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nan", "none", "#error!":
		return true
	}
	return false
}

// CleanText trims whitespace and maps missing/error markers to nil.
func CleanText(value string) *string {
	if isMissing(value) {
		return nil
	}
	trimmed := strings.TrimSpace(value)
	return &trimmed
}

// CleanCurrency strips currency symbols and thousands separators and
// parses the remainder as an exact decimal. Malformed input yields nil,
// never an error.
func CleanCurrency(value string) *decimal.Decimal {
	if isMissing(value) {
		return nil
	}
	cleaned := reCurrencyJunk.ReplaceAllString(strings.TrimSpace(value), "")
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &parsed
}

// CleanPercentage strips a trailing percent sign and parses as decimal.
// Range checking (0-100) is the validator's job, not the parser's.
func CleanPercentage(value string) *decimal.Decimal {
	if isMissing(value) {
		return nil
	}
	cleaned := strings.TrimSpace(strings.ReplaceAll(value, "%", ""))
	parsed, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &parsed
}

// CleanBoolean is total: recognized truthy literals map to true,
// everything else (including missing) to false.
func CleanBoolean(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "checked", "true", "yes", "1":
		return true
	}
	return false
}

// CleanInteger parses an integer cell. Values carrying a decimal point
// are truncated through a float conversion.
func CleanInteger(value string) *int {
	if isMissing(value) {
		return nil
	}
	trimmed := strings.TrimSpace(value)
	if strings.Contains(trimmed, ".") {
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		n := int(parsed)
		return &n
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil
	}
	return &parsed
}

var dateLayouts = []string{
	"1/2/2006",        // 10/24/2023
	"2/1/2006",        // 24/10/2023
	"2006-01-02",      // 2023-10-24
	"January 2, 2006", // October 24, 2023
	"Jan 2, 2006",     // Oct 24, 2023
}

// ParseDate tries a fixed priority order of layouts; the first parse
// wins. Any "1920" year fragment is rewritten to "2020" first - a known
// keyboard-entry typo in the historical data. The corrected form is
// returned so the caller can log the fix.
func ParseDate(value string) (parsed *time.Time, corrected string, ok bool) {
	if isMissing(value) {
		return nil, "", false
	}

	dateStr := strings.TrimSpace(value)
	if strings.Contains(dateStr, "1920") {
		corrected = strings.ReplaceAll(dateStr, "1920", "2020")
		dateStr = corrected
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return &t, corrected, true
		}
	}
	return nil, "", false
}

// ParseImageURLs extracts every parenthesised URL from a multi-value
// image cell. No matches is an empty list, never a failure.
func ParseImageURLs(value string) []string {
	if isMissing(value) {
		return nil
	}
	matches := reImageURL.FindAllStringSubmatch(value, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, m[1])
	}
	return urls
}

// NormalizeSize maps a raw size cell to the closed Size enumeration.
// Unrecognized or missing input defaults to Small; defaulted reports
// whether that fallback fired so the cleaner can log it.
func NormalizeSize(value string) (size internal.Size, defaulted bool) {
	if isMissing(value) || strings.EqualFold(strings.TrimSpace(value), "unknown") {
		return internal.SizeSmall, true
	}

	lower := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(lower, "extra") && strings.Contains(lower, "large"):
		return internal.SizeExtraLarge, false
	case strings.Contains(lower, "large"):
		return internal.SizeLarge, false
	case lower == "small":
		return internal.SizeSmall, false
	}
	return internal.SizeSmall, true
}

// NormalizeFrameType maps a raw frame cell to the closed FrameType
// enumeration, defaulting to Framed. The gallery used to record the
// shop a frame came from, hence the retailer names.
func NormalizeFrameType(value string) (frame internal.FrameType, defaulted bool) {
	if isMissing(value) {
		return internal.FrameFramed, true
	}

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ikea", "b&q", "framed", "frame":
		return internal.FrameFramed, false
	case "tube", "tube only", "tubed":
		return internal.FrameTubeOnly, false
	case "mounted", "mount", "unmounted":
		return internal.FrameMounted, false
	}
	return internal.FrameFramed, true
}
