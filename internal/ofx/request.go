package ofx

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ContentType is the media type of OFX requests and responses.
	ContentType = "application/x-ofx"

	// DefaultVersion is the protocol version requested when none is configured.
	DefaultVersion = 102

	// anonymousCredential is sent as both USERID and USERPASS in
	// anonymous sign-on requests.
	anonymousCredential = "anonymous00000000000000000000000"

	clientAppID      = "QWIN"
	clientAppVersion = "2700"
	profileEpoch     = "19900101"
)

// RequestBuilder renders the request envelopes sent to an OFX server.
type RequestBuilder struct {
	version int
	fid     string
	org     string
	now     func() time.Time
	newUID  func() string
}

// RequestOption configures a RequestBuilder.
type RequestOption func(*RequestBuilder)

// WithClock sets the time source used for DTCLIENT.
func WithClock(now func() time.Time) RequestOption {
	return func(b *RequestBuilder) {
		b.now = now
	}
}

// WithUIDGenerator sets the generator used for TRNUID values.
func WithUIDGenerator(gen func() string) RequestOption {
	return func(b *RequestBuilder) {
		b.newUID = gen
	}
}

// NewRequestBuilder returns a builder for the given protocol version.
// fid and org identify the financial institution; when both are empty
// the FI aggregate is left out of the sign-on request.
//
// It returns ErrUnsupportedVersion when version is not a 1xx or 2xx
// version.
func NewRequestBuilder(version int, fid, org string, opts ...RequestOption) (*RequestBuilder, error) {
	if major := version / 100; major != 1 && major != 2 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	b := &RequestBuilder{
		version: version,
		fid:     fid,
		org:     org,
		now:     time.Now,
		newUID:  NewTransactionUID,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Version returns the protocol version requests are written for.
func (b *RequestBuilder) Version() int {
	return b.version
}

// Family returns the wire family of the generated requests.
func (b *RequestBuilder) Family() Family {
	if b.version/100 == 2 {
		return FamilyXML
	}
	return FamilySGML
}

// Header returns the header block for the configured version.
func (b *RequestBuilder) Header() string {
	if b.Family() == FamilyXML {
		return `<?xml version="1.0" encoding="UTF-8" standalone="no"?>` + "\n" +
			fmt.Sprintf(`<?OFX OFXHEADER="200" VERSION="%d" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>`, b.version) + "\n"
	}
	lines := []string{
		"OFXHEADER:100",
		"DATA:OFXSGML",
		fmt.Sprintf("VERSION:%d", b.version),
		"SECURITY:NONE",
		"ENCODING:USASCII",
		"CHARSET:1252",
		"COMPRESSION:NONE",
		"OLDFILEUID:NONE",
		"NEWFILEUID:NONE",
	}
	return strings.Join(lines, "\n") + "\n"
}

// EmptyEnvelope returns a request with a header and an empty OFX element.
func (b *RequestBuilder) EmptyEnvelope() string {
	return b.Header() + "\n<OFX>\n</OFX>\n"
}

// ProfileRequest returns an anonymous profile request asking for every
// message set the server supports.
func (b *RequestBuilder) ProfileRequest() string {
	return b.envelope(agg("PROFMSGSRQV1",
		agg("PROFTRNRQ",
			leaf("TRNUID", b.newUID()),
			agg("PROFRQ",
				leaf("CLIENTROUTING", "MSGSET"),
				leaf("DTPROFUP", profileEpoch),
			),
		),
	))
}

// AccountInfoRequest returns an anonymous account information request.
func (b *RequestBuilder) AccountInfoRequest() string {
	return b.envelope(agg("SIGNUPMSGSRQV1",
		agg("ACCTINFOTRNRQ",
			leaf("TRNUID", b.newUID()),
			agg("ACCTINFORQ",
				leaf("DTACCTUP", profileEpoch),
			),
		),
	))
}

func (b *RequestBuilder) envelope(msgset element) string {
	var sb strings.Builder
	sb.WriteString(b.Header())
	sb.WriteString("\n<OFX>\n")
	b.render(&sb, b.signon())
	b.render(&sb, msgset)
	sb.WriteString("</OFX>\n")
	return sb.String()
}

func (b *RequestBuilder) signon() element {
	sonrq := agg("SONRQ",
		leaf("DTCLIENT", FormatDateTime(b.now())),
		leaf("USERID", anonymousCredential),
		leaf("USERPASS", anonymousCredential),
		leaf("GENUSERKEY", "N"),
		leaf("LANGUAGE", "ENG"),
	)
	if b.fid != "" || b.org != "" {
		sonrq.children = append(sonrq.children, agg("FI", leaf("ORG", b.org), leaf("FID", b.fid)))
	}
	sonrq.children = append(sonrq.children, leaf("APPID", clientAppID), leaf("APPVER", clientAppVersion))
	return agg("SIGNONMSGSRQV1", sonrq)
}

type element struct {
	name     string
	value    string
	children []element
	isAgg    bool
}

func agg(name string, children ...element) element {
	return element{name: name, children: children, isAgg: true}
}

func leaf(name, value string) element {
	return element{name: name, value: value}
}

// render writes e one tag per line. Leaf end tags are written only for
// the XML family.
func (b *RequestBuilder) render(sb *strings.Builder, e element) {
	if e.isAgg {
		fmt.Fprintf(sb, "<%s>\n", e.name)
		for _, c := range e.children {
			b.render(sb, c)
		}
		fmt.Fprintf(sb, "</%s>\n", e.name)
		return
	}
	if b.Family() == FamilyXML {
		fmt.Fprintf(sb, "<%s>%s</%s>\n", e.name, e.value, e.name)
		return
	}
	fmt.Fprintf(sb, "<%s>%s\n", e.name, e.value)
}

// NewTransactionUID returns an upper case UUID for TRNUID elements.
func NewTransactionUID() string {
	return strings.ToUpper(uuid.NewString())
}

// FormatDateTime renders t in OFX datetime form, for example
// 20170616141327.123[-7:MST].
func FormatDateTime(t time.Time) string {
	name, offset := t.Zone()
	return fmt.Sprintf("%s.%03d[%d:%s]", t.Format("20060102150405"), t.Nanosecond()/int(time.Millisecond), offset/3600, name)
}
