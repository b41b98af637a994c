package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MakeSignature builds a Signature for the given identity. A zero when
// means "now". If offset is nil, the UTC offset is derived from the local
// timezone database at that instant, so daylight-saving rules in effect
// at the timestamp are honored; a non-nil offset (minutes east of UTC)
// is taken verbatim.
func MakeSignature(name, email string, when time.Time, offset *int) Signature {
	if when.IsZero() {
		when = time.Now()
	}
	var off int
	if offset != nil {
		off = *offset
	} else {
		_, secs := when.In(time.Local).Zone()
		off = secs / 60
	}
	return Signature{
		Name:   name,
		Email:  email,
		When:   when.Unix(),
		Offset: off,
	}
}

// Time returns the signature timestamp as a time.Time in the signature's
// own fixed-offset zone.
func (s Signature) Time() time.Time {
	zone := time.FixedZone(formatOffset(s.Offset), s.Offset*60)
	return time.Unix(s.When, 0).In(zone)
}

// FormatSignature renders a Signature as a single commit header value:
//
//	Name <email> 1234567890 +0130
func FormatSignature(s Signature) string {
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When, formatOffset(s.Offset))
}

// ParseSignature parses the FormatSignature form back into a Signature.
func ParseSignature(v string) (Signature, error) {
	open := strings.LastIndex(v, "<")
	end := strings.LastIndex(v, ">")
	if open < 0 || end < open {
		return Signature{}, fmt.Errorf("parse signature: malformed identity in %q", v)
	}
	name := strings.TrimSpace(v[:open])
	email := v[open+1 : end]

	rest := strings.Fields(v[end+1:])
	if len(rest) != 2 {
		return Signature{}, fmt.Errorf("parse signature: malformed timestamp in %q", v)
	}
	when, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature: bad timestamp %q: %w", rest[0], err)
	}
	off, err := parseOffset(rest[1])
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature: %w", err)
	}
	return Signature{Name: name, Email: email, When: when, Offset: off}, nil
}

// formatOffset renders minutes east of UTC as ±HHMM.
func formatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d%02d", sign, minutes/60, minutes%60)
}

func parseOffset(v string) (int, error) {
	if len(v) != 5 || (v[0] != '+' && v[0] != '-') {
		return 0, fmt.Errorf("bad utc offset %q", v)
	}
	hours, err := strconv.Atoi(v[1:3])
	if err != nil {
		return 0, fmt.Errorf("bad utc offset %q: %w", v, err)
	}
	mins, err := strconv.Atoi(v[3:5])
	if err != nil {
		return 0, fmt.Errorf("bad utc offset %q: %w", v, err)
	}
	out := hours*60 + mins
	if v[0] == '-' {
		out = -out
	}
	return out, nil
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload intentionally excludes the signature field itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}
