package ofx

// valueKind selects how an extraction target is read.
type valueKind int

const (
	kindGroup valueKind = iota
	kindPresent
	kindBool
	kindInt
	kindString
	kindStringList
)

// target describes one value read from a profile response.
//
// sgml is the block chain below PROFRS. For kindGroup and kindPresent
// every element is a block; for value kinds the last element is the leaf
// tag and the rest are enclosing blocks. xml is the element path below
// the PROFRS element.
type target struct {
	dest string
	kind valueKind
	sgml []string
	xml  string
}

const (
	xmlSignonCore = "msgsetlist:signonmsgset:signonmsgsetv1:msgsetcore"
	xmlBank       = "msgsetlist:bankmsgset:bankmsgsetv1"
	xmlInvest     = "msgsetlist:invstmtmsgset:invstmtmsgsetv1"
	xmlTax        = "msgsetlist:tax1099msgset:tax1099msgsetv1"
	xmlEmail      = "msgsetlist:emailmsgset:emailmsgsetv1"
	xmlSignonInfo = "signoninfolist:signoninfo"
)

// fieldTargets lists the flat identity fields of a profile.
var fieldTargets = []target{
	{dest: FieldFIName, kind: kindString, sgml: []string{"FINAME"}, xml: "finame"},
	{dest: FieldAddr1, kind: kindString, sgml: []string{"ADDR1"}, xml: "addr1"},
	{dest: FieldAddr2, kind: kindString, sgml: []string{"ADDR2"}, xml: "addr2"},
	{dest: FieldAddr3, kind: kindString, sgml: []string{"ADDR3"}, xml: "addr3"},
	{dest: FieldCity, kind: kindString, sgml: []string{"CITY"}, xml: "city"},
	{dest: FieldState, kind: kindString, sgml: []string{"STATE"}, xml: "state"},
	{dest: FieldPostalCode, kind: kindString, sgml: []string{"POSTALCODE"}, xml: "postalcode"},
	{dest: FieldCountry, kind: kindString, sgml: []string{"COUNTRY"}, xml: "country"},
	{dest: FieldEmail, kind: kindString, sgml: []string{"EMAIL"}, xml: "email"},
	{dest: FieldOFXURL, kind: kindString, sgml: []string{"SIGNONMSGSET", "URL"}, xml: xmlSignonCore + ":url"},
	{dest: FieldSPName, kind: kindString, sgml: []string{"SIGNONMSGSET", "SPNAME"}, xml: xmlSignonCore + ":spname"},
}

// Capability paths.
const (
	CapBanking        = "BANKING"
	CapIntraTransfer  = "BANKING:INTRAXFR"
	CapBankMessages   = "BANKING:MESSAGES"
	CapBankEmail      = "BANKING:MESSAGES:EMAIL"
	CapBankNotify     = "BANKING:MESSAGES:NOTIFY"
	CapInvestment     = "INVESTMENT"
	CapTransactions   = "INVESTMENT:TRANSACTIONS"
	CapOpenOrders     = "INVESTMENT:OPENORDERS"
	CapPositions      = "INVESTMENT:POSITIONS"
	CapBalances       = "INVESTMENT:BALANCES"
	Cap401K           = "INVESTMENT:401K"
	CapQuotes         = "INVESTMENT:QUOTES"
	CapCreditCard     = "CREDITCARD"
	CapStatement      = "CREDITCARD:STATEMENT"
	CapBillPay        = "BILLPAY"
	CapTaxes          = "TAXES"
	Cap1099           = "TAXES:1099"
	Cap1099B          = "TAXES:1099B"
	CapTaxYears       = "TAXES:YEARS"
	CapMessaging      = "MESSAGING"
	CapMessagingEmail = "MESSAGING:EMAIL"
	CapMessagingMIME  = "MESSAGING:MIME"
	CapAuthentication = "AUTHENTICATION"
	CapMinPassword    = "AUTHENTICATION:MINPASS"
	CapMaxPassword    = "AUTHENTICATION:MAXPASS"
	CapComplexity     = "AUTHENTICATION:COMPLEXITY"
	CapCaseSensitive  = "AUTHENTICATION:CASESEN"
	CapSpecialChars   = "AUTHENTICATION:SPECIAL"
	CapMFA            = "AUTHENTICATION:MFA"
	CapMFAClientUID   = "AUTHENTICATION:MFA:CLIENTUID"
)

// capabilityTargets lists the capability tree. Group targets must come
// before the leaves that live under them.
var capabilityTargets = []target{
	{dest: CapBanking, kind: kindGroup, sgml: []string{"BANKMSGSET"}, xml: "msgsetlist:bankmsgset"},
	{dest: CapIntraTransfer, kind: kindPresent, sgml: []string{"BANKMSGSET", "XFERPROF"}, xml: xmlBank + ":xferprof"},
	{dest: CapBankMessages, kind: kindGroup, sgml: []string{"BANKMSGSET", "EMAILPROF"}, xml: xmlBank + ":emailprof"},
	{dest: CapBankEmail, kind: kindBool, sgml: []string{"BANKMSGSET", "EMAILPROF", "CANEMAIL"}, xml: xmlBank + ":emailprof:canemail"},
	{dest: CapBankNotify, kind: kindBool, sgml: []string{"BANKMSGSET", "EMAILPROF", "CANNOTIFY"}, xml: xmlBank + ":emailprof:cannotify"},

	{dest: CapInvestment, kind: kindGroup, sgml: []string{"INVSTMTMSGSET"}, xml: "msgsetlist:invstmtmsgset"},
	{dest: CapTransactions, kind: kindBool, sgml: []string{"INVSTMTMSGSET", "TRANDNLD"}, xml: xmlInvest + ":trandnld"},
	{dest: CapOpenOrders, kind: kindBool, sgml: []string{"INVSTMTMSGSET", "OODNLD"}, xml: xmlInvest + ":oodnld"},
	{dest: CapPositions, kind: kindBool, sgml: []string{"INVSTMTMSGSET", "POSDNLD"}, xml: xmlInvest + ":posdnld"},
	{dest: CapBalances, kind: kindBool, sgml: []string{"INVSTMTMSGSET", "BALDNLD"}, xml: xmlInvest + ":baldnld"},
	{dest: Cap401K, kind: kindBool, sgml: []string{"INVSTMTMSGSET", "INV401KDNLD"}, xml: xmlInvest + ":inv401kdnld"},
	{dest: CapQuotes, kind: kindBool, sgml: []string{"SECLISTMSGSET", "SECLISTRQDNLD"}, xml: "msgsetlist:seclistmsgset:seclistmsgsetv1:seclistrqdnld"},

	{dest: CapCreditCard, kind: kindGroup, sgml: []string{"CREDITCARDMSGSET"}, xml: "msgsetlist:creditcardmsgset"},
	{dest: CapStatement, kind: kindBool, sgml: []string{"CREDITCARDMSGSET", "CLOSINGAVAIL"}, xml: "msgsetlist:creditcardmsgset:creditcardmsgsetv1:closingavail"},

	{dest: CapBillPay, kind: kindGroup, sgml: []string{"BILLPAYMSGSET"}, xml: "msgsetlist:billpaymsgset"},

	{dest: CapTaxes, kind: kindGroup, sgml: []string{"TAX1099MSGSET"}, xml: "msgsetlist:tax1099msgset"},
	{dest: Cap1099, kind: kindBool, sgml: []string{"TAX1099MSGSET", "TAX1099DNLD"}, xml: xmlTax + ":tax1099dnld"},
	{dest: Cap1099B, kind: kindBool, sgml: []string{"TAX1099MSGSET", "EXTD1099B"}, xml: xmlTax + ":extd1099b"},
	{dest: CapTaxYears, kind: kindStringList, sgml: []string{"TAX1099MSGSET", "TAXYEARSUPPORTED"}, xml: xmlTax + ":taxyearsupported"},

	{dest: CapMessaging, kind: kindGroup, sgml: []string{"EMAILMSGSET"}, xml: "msgsetlist:emailmsgset"},
	{dest: CapMessagingEmail, kind: kindBool, sgml: []string{"EMAILMSGSET", "MAILSUP"}, xml: xmlEmail + ":mailsup"},
	{dest: CapMessagingMIME, kind: kindBool, sgml: []string{"EMAILMSGSET", "GETMIMESUP"}, xml: xmlEmail + ":getmimesup"},

	{dest: CapAuthentication, kind: kindGroup, sgml: []string{"SIGNONINFO"}, xml: xmlSignonInfo},
	{dest: CapMinPassword, kind: kindInt, sgml: []string{"SIGNONINFO", "MIN"}, xml: xmlSignonInfo + ":min"},
	{dest: CapMaxPassword, kind: kindInt, sgml: []string{"SIGNONINFO", "MAX"}, xml: xmlSignonInfo + ":max"},
	{dest: CapComplexity, kind: kindString, sgml: []string{"SIGNONINFO", "CHARTYPE"}, xml: xmlSignonInfo + ":chartype"},
	{dest: CapCaseSensitive, kind: kindBool, sgml: []string{"SIGNONINFO", "CASESEN"}, xml: xmlSignonInfo + ":casesen"},
	{dest: CapSpecialChars, kind: kindBool, sgml: []string{"SIGNONINFO", "SPECIAL"}, xml: xmlSignonInfo + ":special"},
	{dest: CapMFAClientUID, kind: kindBool, sgml: []string{"SIGNONINFO", "CLIENTUIDREQ"}, xml: xmlSignonInfo + ":clientuidreq"},
}
