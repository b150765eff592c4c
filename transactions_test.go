package txengine

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRecord(t *testing.T) {
	testCases := []struct {
		name    string
		raw     RawRecord
		want    Record
		wantErr bool
	}{
		{
			name: "deposit",
			raw:  RawRecord{Kind: "deposit", Client: "1", Tx: "1", Amount: "1.0"},
			want: NewDeposit(1, 1, MustParseAmount("1")),
		},
		{
			name: "withdrawal with spaces and case",
			raw:  RawRecord{Kind: " Withdrawal ", Client: " 2", Tx: "5 ", Amount: " 3.25"},
			want: NewWithdrawal(2, 5, MustParseAmount("3.25")),
		},
		{
			name: "dispute",
			raw:  RawRecord{Kind: "DISPUTE", Client: "1", Tx: "1"},
			want: NewDispute(1, 1),
		},
		{
			name: "resolve",
			raw:  RawRecord{Kind: "resolve", Client: "1", Tx: "1", Amount: "  "},
			want: NewResolve(1, 1),
		},
		{
			name: "chargeback",
			raw:  RawRecord{Kind: "chargeback", Client: "65535", Tx: "4294967295"},
			want: NewChargeback(65535, 4294967295),
		},
		{name: "unknown kind", raw: RawRecord{Kind: "transfer", Client: "1", Tx: "1", Amount: "1"}, wantErr: true},
		{name: "missing amount", raw: RawRecord{Kind: "deposit", Client: "1", Tx: "1"}, wantErr: true},
		{name: "forbidden amount", raw: RawRecord{Kind: "dispute", Client: "1", Tx: "1", Amount: "1"}, wantErr: true},
		{name: "negative client", raw: RawRecord{Kind: "deposit", Client: "-1", Tx: "1", Amount: "1"}, wantErr: true},
		{name: "client too large", raw: RawRecord{Kind: "deposit", Client: "65536", Tx: "1", Amount: "1"}, wantErr: true},
		{name: "tx not a number", raw: RawRecord{Kind: "deposit", Client: "1", Tx: "x", Amount: "1"}, wantErr: true},
		{name: "negative amount", raw: RawRecord{Kind: "deposit", Client: "1", Tx: "1", Amount: "-1"}, wantErr: true},
		{name: "too precise amount", raw: RawRecord{Kind: "withdrawal", Client: "1", Tx: "1", Amount: "0.00001"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRecord(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedRecord) {
					t.Fatalf("ParseRecord(%+v) error = %v, want %v", tc.raw, err, ErrMalformedRecord)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRecord(%+v) unexpected error: %v", tc.raw, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseRecord(%+v) mismatch (-want +got):\n%s", tc.raw, diff)
			}
		})
	}
}

func TestParseRecord_RejectionIsRepeatable(t *testing.T) {
	raw := RawRecord{Kind: "deposit", Client: "1", Tx: "1", Amount: "oops"}
	_, err1 := ParseRecord(raw)
	_, err2 := ParseRecord(raw)
	if err1 == nil || err2 == nil || err1.Error() != err2.Error() {
		t.Errorf("ParseRecord() twice = %v, %v; want the same error twice", err1, err2)
	}
}
