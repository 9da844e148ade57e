package correction

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"address-gateway/core/usps"
	"address-gateway/core/utils"
)

// NoteMissingSecondary is attached when USPS needs an apartment, suite or box.
const NoteMissingSecondary = "Missing apartment, suite, or box number."

// Shortcut resolves addresses that must not be sent to USPS. A state that is
// not upper case is reported as a single correction, since USPS rejects it
// outright instead of correcting it. A two letter country other than US is
// skipped.
func Shortcut(a Address) (Result, bool) {
	if upper := strings.ToUpper(a.State); a.State != upper {
		street := strings.ReplaceAll(html.EscapeString(a.StreetAddress), "\n", "<br>")
		return Result{
			Code: Correction,
			Message: fmt.Sprintf("%s<br>%s, <strong>%s</strong> %s",
				street, html.EscapeString(a.City), html.EscapeString(upper), html.EscapeString(a.ZIP)),
			CorrectionCount: 1,
		}, true
	}
	if len(a.Country) == 2 && a.Country != "US" {
		return Result{Code: Skipped}, true
	}
	return Result{}, false
}

// Normalize title cases street and city and splits the ZIP code.
func Normalize(a Address) Canonical {
	zip5, zip4 := utils.SplitZIP(a.ZIP)
	return Canonical{
		StreetAddress: utils.TitleCase(a.StreetAddress),
		City:          utils.TitleCase(a.City),
		State:         a.State,
		ZIP5:          zip5,
		ZIP4:          zip4,
	}
}

// Query returns the lookup parameters. Empty fields are left out because USPS
// rejects empty parameters.
func (c Canonical) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("streetAddress", c.StreetAddress)
	set("city", c.City)
	set("state", c.State)
	set("ZIPCode", c.ZIP5)
	set("ZIPPlus4", c.ZIP4)
	return q
}

// FromProvider converts the USPS address into the form compared by Diff.
func FromProvider(a usps.CanonicalAddress) Canonical {
	return Canonical{
		StreetAddress: strings.TrimSpace(utils.TitleCase(a.StreetAddress + " " + a.SecondaryAddress)),
		City:          utils.TitleCase(a.City),
		State:         a.State,
		ZIP5:          a.ZIPCode,
		ZIP4:          a.ZIPPlus4,
	}
}

// Diff compares input with canonical field by field. Differing fields are
// shown from canonical in <strong> and counted on top of corrections. note,
// when set, is appended in italics.
func Diff(input, canonical Canonical, note string, corrections int) Result {
	count := corrections
	field := func(have, want string) string {
		if have == want {
			return html.EscapeString(have)
		}
		count++
		return "<strong>" + html.EscapeString(want) + "</strong>"
	}

	var b strings.Builder
	b.WriteString(field(input.StreetAddress, canonical.StreetAddress))
	b.WriteString("<br>")
	b.WriteString(field(input.City, canonical.City))
	b.WriteString(", ")
	b.WriteString(field(input.State, canonical.State))
	b.WriteString(" ")
	b.WriteString(field(utils.FormatZIP(input.ZIP5, input.ZIP4), utils.FormatZIP(canonical.ZIP5, canonical.ZIP4)))

	if count == 0 {
		return Result{Code: Match}
	}
	if note != "" {
		b.WriteString("<br><i>" + html.EscapeString(note) + "</i>")
	}
	return Result{
		Code:            Correction,
		Message:         "<span>" + b.String() + "</span>",
		CorrectionCount: count,
	}
}

// Interpret turns a provider response for input into a Result.
func Interpret(input Canonical, resp usps.Response) Result {
	if resp.StatusCode == 404 {
		return Result{Code: NotFound}
	}

	payload, err := resp.Decode()
	if !resp.Success() {
		msg := fmt.Sprintf("USPS returned status code %d", resp.StatusCode)
		if err == nil && payload.Error != nil && payload.Error.Message != "" {
			msg += ": " + payload.Error.Message
		}
		return Result{Code: ProviderError, Message: msg}
	}
	if err != nil {
		return Result{Code: ProviderError, Message: "USPS returned an unrecognized response"}
	}
	if payload.Address == nil {
		msg := "USPS returned no address"
		if payload.Error != nil && payload.Error.Message != "" {
			msg += ": " + payload.Error.Message
		}
		return Result{Code: ProviderError, Message: msg}
	}

	var note string
	corrections := 0
	switch code := payload.StatusCode(); code {
	case "31":
	case "32":
		note = NoteMissingSecondary
		corrections++
	case "22":
		note = firstText(payload)
		corrections++
	default:
		return Result{Code: UnhandledCode, Message: fmt.Sprintf("Status code %s not implemented", code)}
	}

	return Diff(input, FromProvider(*payload.Address), note, corrections)
}

func firstText(p *usps.Payload) string {
	if len(p.Corrections) > 0 {
		return p.Corrections[0].Text
	}
	return ""
}
