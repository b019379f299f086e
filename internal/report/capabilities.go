package report

import (
	"github.com/nao1215/ofxpostern/internal/ofx"
)

// capNode is one line of the capability tree.
type capNode struct {
	Label    string
	Children []capNode
}

// flag is a boolean capability and its display label.
type flag struct {
	path  string
	label string
}

var (
	bankingFlags = []flag{
		{ofx.CapIntraTransfer, "Intrabank Transfer"},
	}
	bankMessageFlags = []flag{
		{ofx.CapBankEmail, "Email"},
		{ofx.CapBankNotify, "Notifications"},
	}
	investmentFlags = []flag{
		{ofx.CapTransactions, "Transactions"},
		{ofx.CapOpenOrders, "Open Orders"},
		{ofx.CapPositions, "Positions"},
		{ofx.CapBalances, "Balances"},
		{ofx.Cap401K, "401(k)"},
		{ofx.CapQuotes, "Quotes"},
	}
	creditCardFlags = []flag{
		{ofx.CapStatement, "Closing Statement"},
	}
	taxFlags = []flag{
		{ofx.Cap1099, "1099"},
		{ofx.Cap1099B, "Schedule D"},
	}
	messagingFlags = []flag{
		{ofx.CapMessagingEmail, "Email"},
		{ofx.CapMessagingMIME, "MIME"},
	}
)

// capabilityTree lists what the server supports. A message set appears
// when it was disclosed; its entries only when they are set to Y.
func capabilityTree(p *ofx.Profile) []capNode {
	if p == nil || p.Capabilities == nil {
		return nil
	}
	caps := p.Capabilities
	var tree []capNode

	if caps.Has(ofx.CapBanking) {
		node := capNode{Label: "Banking", Children: enabled(caps, bankingFlags)}
		if msgs := enabled(caps, bankMessageFlags); len(msgs) > 0 {
			node.Children = append(node.Children, capNode{Label: "Messaging", Children: msgs})
		}
		tree = append(tree, node)
	}
	if caps.Has(ofx.CapInvestment) {
		tree = append(tree, capNode{Label: "Investment", Children: enabled(caps, investmentFlags)})
	}
	if caps.Has(ofx.CapCreditCard) {
		tree = append(tree, capNode{Label: "Credit Card", Children: enabled(caps, creditCardFlags)})
	}
	if caps.Has(ofx.CapBillPay) {
		tree = append(tree, capNode{Label: "Bill Pay"})
	}
	if caps.Has(ofx.CapTaxes) {
		node := capNode{Label: "Taxes", Children: enabled(caps, taxFlags)}
		if years, ok := caps.String(ofx.CapTaxYears); ok {
			node.Children = append(node.Children, capNode{Label: "Years", Children: []capNode{{Label: years}}})
		}
		tree = append(tree, node)
	}
	if caps.Has(ofx.CapMessaging) {
		tree = append(tree, capNode{Label: "Messaging", Children: enabled(caps, messagingFlags)})
	}
	if v, ok := caps.Bool(ofx.CapMFAClientUID); ok && v {
		tree = append(tree, capNode{
			Label: "Authentication",
			Children: []capNode{{
				Label:    "MFA",
				Children: []capNode{{Label: "Require Client ID"}},
			}},
		})
	}
	return tree
}

func enabled(caps *ofx.Tree, flags []flag) []capNode {
	var nodes []capNode
	for _, f := range flags {
		if v, ok := caps.Bool(f.path); ok && v {
			nodes = append(nodes, capNode{Label: f.label})
		}
	}
	return nodes
}

// institutionLines returns the name and postal address of the institution
// as label/value pairs.
func institutionLines(p *ofx.Profile) [][2]string {
	if p == nil {
		return nil
	}
	var lines [][2]string
	labels := []struct{ field, label string }{
		{ofx.FieldFIName, "Name"},
		{ofx.FieldAddr1, "Address"},
		{ofx.FieldAddr2, ""},
		{ofx.FieldAddr3, ""},
	}
	for _, l := range labels {
		if v, ok := p.Field(l.field); ok {
			lines = append(lines, [2]string{l.label, v})
		}
	}

	city, _ := p.Field(ofx.FieldCity)
	state, _ := p.Field(ofx.FieldState)
	postal, _ := p.Field(ofx.FieldPostalCode)
	if city != "" || state != "" || postal != "" {
		lines = append(lines, [2]string{"", city + ", " + state + " " + postal})
	}
	if country, ok := p.Field(ofx.FieldCountry); ok {
		lines = append(lines, [2]string{"", country})
	}
	return lines
}

// serverLines returns the protocol details of the server.
func serverLines(p *ofx.Profile) [][2]string {
	if p == nil {
		return nil
	}
	lines := [][2]string{{"OFX Version", p.VersionString()}}
	if p.Signon != nil {
		if p.Signon.FID != nil {
			lines = append(lines, [2]string{"FID", *p.Signon.FID})
		}
		if p.Signon.Org != nil {
			lines = append(lines, [2]string{"ORG", *p.Signon.Org})
		}
	}
	if u, ok := p.Field(ofx.FieldOFXURL); ok {
		lines = append(lines, [2]string{"URL", u})
	}
	return lines
}
