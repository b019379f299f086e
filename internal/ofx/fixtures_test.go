package ofx

const sgmlHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

`

// sgmlProfile is a family 1 profile response with most message sets.
const sgmlProfile = sgmlHeader + `<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20170616141327.000[-5:EST]
<LANGUAGE>ENG
<FI>
<ORG>BigBank
<FID>1234
</FI>
</SONRS>
</SIGNONMSGSRSV1>
<PROFMSGSRSV1>
<PROFTRNRS>
<TRNUID>C1B7C870-7CB2-1000-BD91-E1E23E560026
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<PROFRS>
<MSGSETLIST>
<SIGNONMSGSET>
<SIGNONMSGSETV1>
<MSGSETCORE>
<VER>1
<URL>https://ofx.bigbank.com/ofx/process.ofx
<OFXSEC>NONE
<TRANSPSEC>Y
<SIGNONREALM>DEFAULT
<LANGUAGE>ENG
<SYNCMODE>LITE
<RESPFILEER>N
<SPNAME>Acme OFX Hosting
</MSGSETCORE>
</SIGNONMSGSETV1>
</SIGNONMSGSET>
<BANKMSGSET>
<BANKMSGSETV1>
<MSGSETCORE>
<VER>1
<URL>https://ofx.bigbank.com/ofx/process.ofx
<OFXSEC>NONE
<TRANSPSEC>Y
<SIGNONREALM>DEFAULT
<LANGUAGE>ENG
<SYNCMODE>LITE
<RESPFILEER>N
</MSGSETCORE>
<XFERPROF>
<PROCENDTM>170000.000[-5:EST]
<CANSCHED>Y
<CANRECUR>N
<CANMODXFERS>N
<CANMODMDLS>N
<MODELWND>0
<DAYSWITH>0
<DFLTDAYSTOPAY>0
</XFERPROF>
<EMAILPROF>
<CANEMAIL>Y
<CANNOTIFY>N
</EMAILPROF>
</BANKMSGSETV1>
</BANKMSGSET>
<CREDITCARDMSGSET>
<CREDITCARDMSGSETV1>
<MSGSETCORE>
<VER>1
<URL>https://ofx.bigbank.com/ofx/process.ofx
<OFXSEC>NONE
<TRANSPSEC>Y
<SIGNONREALM>DEFAULT
<LANGUAGE>ENG
<SYNCMODE>LITE
<RESPFILEER>N
</MSGSETCORE>
<CLOSINGAVAIL>Y
</CREDITCARDMSGSETV1>
</CREDITCARDMSGSET>
<INVSTMTMSGSET>
<INVSTMTMSGSETV1>
<MSGSETCORE>
<VER>1
<URL>https://ofx.bigbank.com/ofx/process.ofx
<OFXSEC>NONE
<TRANSPSEC>Y
<SIGNONREALM>DEFAULT
<LANGUAGE>ENG
<SYNCMODE>LITE
<RESPFILEER>N
</MSGSETCORE>
<TRANDNLD>Y
<OODNLD>N
<POSDNLD>Y
<BALDNLD>Y
<CANEMAIL>N
</INVSTMTMSGSETV1>
</INVSTMTMSGSET>
<SECLISTMSGSET>
<SECLISTMSGSETV1>
<MSGSETCORE>
<VER>1
<URL>https://ofx.bigbank.com/ofx/process.ofx
<OFXSEC>NONE
<TRANSPSEC>Y
<SIGNONREALM>DEFAULT
<LANGUAGE>ENG
<SYNCMODE>LITE
<RESPFILEER>N
</MSGSETCORE>
<SECLISTRQDNLD>N
</SECLISTMSGSETV1>
</SECLISTMSGSET>
</MSGSETLIST>
<SIGNONINFOLIST>
<SIGNONINFO>
<SIGNONREALM>DEFAULT
<MIN>4
<MAX>32
<CHARTYPE>ALPHAORNUMERIC
<CASESEN>N
<SPECIAL>Y
<SPACES>N
<PINCH>N
<CHGPINFIRST>N
</SIGNONINFO>
</SIGNONINFOLIST>
<DTPROFUP>20170101000000.000[-5:EST]
<FINAME>Big Bank
<ADDR1>1 Main Street
<CITY>Springfield
<STATE>IL
<POSTALCODE>62701
<COUNTRY>USA
<EMAIL>jsmith@bigbank.com
</PROFRS>
</PROFTRNRS>
</PROFMSGSRSV1>
</OFX>
`

// xmlProfile carries the same content as sgmlProfile in family 2 form.
const xmlProfile = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<?OFX OFXHEADER="200" VERSION="102" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>
<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS><CODE>0</CODE><SEVERITY>INFO</SEVERITY></STATUS>
<DTSERVER>20170616141327.000[-5:EST]</DTSERVER>
<LANGUAGE>ENG</LANGUAGE>
<FI><ORG>BigBank</ORG><FID>1234</FID></FI>
</SONRS>
</SIGNONMSGSRSV1>
<PROFMSGSRSV1>
<PROFTRNRS>
<TRNUID>C1B7C870-7CB2-1000-BD91-E1E23E560026</TRNUID>
<STATUS><CODE>0</CODE><SEVERITY>INFO</SEVERITY></STATUS>
<PROFRS>
<MSGSETLIST>
<SIGNONMSGSET>
<SIGNONMSGSETV1>
<MSGSETCORE>
<VER>1</VER>
<URL>https://ofx.bigbank.com/ofx/process.ofx</URL>
<OFXSEC>NONE</OFXSEC>
<TRANSPSEC>Y</TRANSPSEC>
<SIGNONREALM>DEFAULT</SIGNONREALM>
<LANGUAGE>ENG</LANGUAGE>
<SYNCMODE>LITE</SYNCMODE>
<RESPFILEER>N</RESPFILEER>
<SPNAME>Acme OFX Hosting</SPNAME>
</MSGSETCORE>
</SIGNONMSGSETV1>
</SIGNONMSGSET>
<BANKMSGSET>
<BANKMSGSETV1>
<MSGSETCORE><VER>1</VER><URL>https://ofx.bigbank.com/ofx/process.ofx</URL></MSGSETCORE>
<XFERPROF><PROCENDTM>170000.000[-5:EST]</PROCENDTM><CANSCHED>Y</CANSCHED></XFERPROF>
<EMAILPROF><CANEMAIL>Y</CANEMAIL><CANNOTIFY>N</CANNOTIFY></EMAILPROF>
</BANKMSGSETV1>
</BANKMSGSET>
<CREDITCARDMSGSET>
<CREDITCARDMSGSETV1>
<MSGSETCORE><VER>1</VER></MSGSETCORE>
<CLOSINGAVAIL>Y</CLOSINGAVAIL>
</CREDITCARDMSGSETV1>
</CREDITCARDMSGSET>
<INVSTMTMSGSET>
<INVSTMTMSGSETV1>
<MSGSETCORE><VER>1</VER></MSGSETCORE>
<TRANDNLD>Y</TRANDNLD>
<OODNLD>N</OODNLD>
<POSDNLD>Y</POSDNLD>
<BALDNLD>Y</BALDNLD>
<CANEMAIL>N</CANEMAIL>
</INVSTMTMSGSETV1>
</INVSTMTMSGSET>
<SECLISTMSGSET>
<SECLISTMSGSETV1>
<MSGSETCORE><VER>1</VER></MSGSETCORE>
<SECLISTRQDNLD>N</SECLISTRQDNLD>
</SECLISTMSGSETV1>
</SECLISTMSGSET>
</MSGSETLIST>
<SIGNONINFOLIST>
<SIGNONINFO>
<SIGNONREALM>DEFAULT</SIGNONREALM>
<MIN>4</MIN>
<MAX>32</MAX>
<CHARTYPE>ALPHAORNUMERIC</CHARTYPE>
<CASESEN>N</CASESEN>
<SPECIAL>Y</SPECIAL>
<SPACES>N</SPACES>
<PINCH>N</PINCH>
<CHGPINFIRST>N</CHGPINFIRST>
</SIGNONINFO>
</SIGNONINFOLIST>
<DTPROFUP>20170101000000.000[-5:EST]</DTPROFUP>
<FINAME>Big Bank</FINAME>
<ADDR1>1 Main Street</ADDR1>
<CITY>Springfield</CITY>
<STATE>IL</STATE>
<POSTALCODE>62701</POSTALCODE>
<COUNTRY>USA</COUNTRY>
<EMAIL>jsmith@bigbank.com</EMAIL>
</PROFRS>
</PROFTRNRS>
</PROFMSGSRSV1>
</OFX>
`

// xmlTaxProfile is a family 2 response with a 1099 message set and MFA.
const xmlTaxProfile = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<?OFX OFXHEADER="200" VERSION="203" SECURITY="NONE" OLDFILEUID="NONE" NEWFILEUID="NONE"?>
<OFX>
<PROFMSGSRSV1>
<PROFTRNRS>
<TRNUID>1</TRNUID>
<PROFRS>
<MSGSETLIST>
<INVSTMTMSGSET>
<INVSTMTMSGSETV1>
<TRANDNLD>Y</TRANDNLD>
<INV401KDNLD>Y</INV401KDNLD>
</INVSTMTMSGSETV1>
</INVSTMTMSGSET>
<TAX1099MSGSET>
<TAX1099MSGSETV1>
<MSGSETCORE><VER>1</VER></MSGSETCORE>
<TAX1099DNLD>Y</TAX1099DNLD>
<EXTD1099B>N</EXTD1099B>
<TAXYEARSUPPORTED>2016</TAXYEARSUPPORTED>
<TAXYEARSUPPORTED>2017</TAXYEARSUPPORTED>
</TAX1099MSGSETV1>
</TAX1099MSGSET>
</MSGSETLIST>
<SIGNONINFOLIST>
<SIGNONINFO>
<MIN>8</MIN>
<CLIENTUIDREQ>Y</CLIENTUIDREQ>
</SIGNONINFO>
</SIGNONINFOLIST>
<FINAME>Broker Co</FINAME>
<EMAIL>support@broker.co</EMAIL>
</PROFRS>
</PROFTRNRS>
</PROFMSGSRSV1>
</OFX>
`
