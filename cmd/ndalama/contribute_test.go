package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/ndalama/internal/common"
	"github.com/Veraticus/ndalama/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const savingsStatement = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>555001
<ACCTTYPE>SAVINGS
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240105120000[0:GMT]
<TRNAMT>250.00
<FITID>A1
<NAME>TRANSFER FROM CHECKING
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>A2
<NAME>MONTHLY FEE
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEP
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>40.25
<FITID>A3
<NAME>DEPOSIT
<MEMO>Birthday gift
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func writeStatement(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "savings.qfx")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestContributeAdd(t *testing.T) {
	db := setupSeededTest(t, testutil.Holiday())
	id := db.MustGoal("Holiday").ID

	out, err := runCommand(t, contributeCmd(), "", "add", "1", "--amount", "75.5", "--description", "Payday", "--date", "2024-02-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Added USD 75.50 to goal #1 Holiday")

	contributions, err := db.Storage.ListContributionsForGoal(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, contributions, 1)
	assert.Equal(t, "75.5", contributions[0].Amount.String())
	assert.Equal(t, "Payday", contributions[0].Description)
	assert.Equal(t, manualSource, contributions[0].Source)
	assert.Equal(t, "deposit", contributions[0].Type)
	assert.Equal(t, "2024-02-01", contributions[0].Date.Format(dateLayout))
}

func TestContributeAddRejectsBadInput(t *testing.T) {
	setupSeededTest(t, testutil.Holiday())

	_, err := runCommand(t, contributeCmd(), "", "add", "1", "--amount", "-10")
	require.Error(t, err)
	assert.Equal(t, "amount cannot be negative", common.UserMessage(err))

	_, err = runCommand(t, contributeCmd(), "", "add", "7", "--amount", "10")
	require.Error(t, err)
	assert.Equal(t, "goal not found", common.UserMessage(err))
}

func TestContributeList(t *testing.T) {
	setupSeededTest(t, testutil.EmergencyFund(), testutil.Holiday().Contribute("30", 2))

	out, err := runCommand(t, contributeCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "USD 700.00")
	assert.Contains(t, out, "USD 500.00")
	assert.Contains(t, out, "USD 30.00")

	out, err = runCommand(t, contributeCmd(), "", "list", "--goal", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "USD 30.00")
	assert.NotContains(t, out, "USD 700.00")
}

func TestContributeImport(t *testing.T) {
	db := setupSeededTest(t, testutil.Holiday())
	path := writeStatement(t, savingsStatement)

	out, err := runCommand(t, contributeCmd(), "", "import", path, "--goal", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 contributions to goal #1 Holiday (0 already imported)")

	contributions, err := db.Storage.ListContributionsForGoal(context.Background(), db.MustGoal("Holiday").ID)
	require.NoError(t, err)
	require.Len(t, contributions, 2)
	assert.Equal(t, "ofx:555001:A1", contributions[0].Source)
	assert.Equal(t, "250", contributions[0].Amount.String())
	assert.Equal(t, "Birthday gift", contributions[1].Description)

	out, err = runCommand(t, contributeCmd(), "", "import", path, "--goal", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing new in savings.qfx (2 deposits already imported)")

	counts, err := db.Storage.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Contributions)
}

func TestContributeImportFailures(t *testing.T) {
	setupSeededTest(t, testutil.Holiday())

	out, err := runCommand(t, contributeCmd(), "", "import", filepath.Join(t.TempDir(), "missing.qfx"), "--goal", "1")
	require.Error(t, err)
	var reported *reportedError
	assert.True(t, errors.As(err, &reported))
	assert.Contains(t, out, "Import failed: cannot open missing.qfx")

	path := writeStatement(t, savingsStatement)
	_, err = runCommand(t, contributeCmd(), "", "import", path, "--goal", "1", "--account", "other")
	require.Error(t, err)
}

func TestContributeAccounts(t *testing.T) {
	setupCommandTest(t)
	path := writeStatement(t, savingsStatement)

	out, err := runCommand(t, contributeCmd(), "", "accounts", path)
	require.NoError(t, err)
	assert.Equal(t, "555001\n", out)
}
