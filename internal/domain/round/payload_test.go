package round

import (
	"encoding/base64"
	"testing"
)

const samplePayloadJSON = `[
	{"PlayerName":"Host@Balmung","Dealer":true,"Cards":[10,7],"Result":0},
	{"PlayerName":"Alice@Balmung [2]","Cards":[10,2],"Bet":5000,"Payout":10000,"Result":1,"SplitNum":0},
	{"PlayerName":"Bob@Crystal","Cards":[5,5,11],"Bet":2000,"Payout":0,"Result":3,"IsDoubleDown":true}
]`

func TestDecodePayloadDirectJSON(t *testing.T) {
	t.Parallel()

	entries, payloadBase64, err := DecodePayload(samplePayloadJSON)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if payloadBase64 == "" {
		t.Fatal("expected payload base64 to be retained")
	}
}

func TestDecodePayloadBase64(t *testing.T) {
	t.Parallel()

	encoded := base64.StdEncoding.EncodeToString([]byte(samplePayloadJSON))
	entries, payloadBase64, err := DecodePayload("  " + encoded + "  ")
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if payloadBase64 != encoded {
		t.Fatalf("expected original base64 retained, got %q", payloadBase64)
	}
}

func TestDecodePayloadEmpty(t *testing.T) {
	t.Parallel()

	entries, payloadBase64, err := DecodePayload("   \n ")
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}
	if len(entries) != 0 || payloadBase64 != "" {
		t.Fatalf("expected empty decode, got %d entries payload=%q", len(entries), payloadBase64)
	}
}

func TestDecodePayloadMalformed(t *testing.T) {
	t.Parallel()

	if _, _, err := DecodePayload("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, _, err := DecodePayload("[{broken"); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestParseEntries(t *testing.T) {
	t.Parallel()

	raw, _, err := DecodePayload(samplePayloadJSON)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	entries := ParseEntries(raw)
	if len(entries) != 3 {
		t.Fatalf("expected 3 parsed entries, got %d", len(entries))
	}

	dealer := entries[0]
	if !dealer.Dealer || dealer.PlayerID != "balmung:host" {
		t.Fatalf("unexpected dealer entry: %+v", dealer)
	}

	alice := entries[1]
	if alice.PlayerTag != "Alice@Balmung" {
		t.Fatalf("instance suffix not stripped: %q", alice.PlayerTag)
	}
	if alice.ComboKey != "10-2" {
		t.Fatalf("unexpected combo key %q", alice.ComboKey)
	}
	if alice.Bet != 5000 || alice.Payout != 10000 {
		t.Fatalf("unexpected amounts: %+v", alice)
	}

	bob := entries[2]
	if !bob.IsDoubleDown || bob.ComboKey != "5-5-11" {
		t.Fatalf("unexpected entry: %+v", bob)
	}
}

func TestParseEntriesDropsRecordsWithoutPlayerName(t *testing.T) {
	t.Parallel()

	raw := []RawEntry{
		{Cards: []float64{1, 2}},
		{PlayerName: strPtr("Alice@Balmung"), Cards: []float64{3}},
	}

	entries := ParseEntries(raw)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].PlayerID != "balmung:alice" {
		t.Fatalf("unexpected player id %q", entries[0].PlayerID)
	}
}

func strPtr(s string) *string { return &s }
