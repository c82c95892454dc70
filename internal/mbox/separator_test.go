package mbox

import "testing"

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantSender string
		wantYear   int
		wantOK     bool
	}{
		{
			name:       "classic ctime",
			line:       "From alice@example.com Tue Mar 15 10:00:00 2022",
			wantSender: "alice@example.com",
			wantYear:   2022,
			wantOK:     true,
		},
		{
			name:       "padded day",
			line:       "From bob@example.com Mon Jan  1 00:00:00 2024",
			wantSender: "bob@example.com",
			wantYear:   2024,
			wantOK:     true,
		},
		{
			name:       "offset before year",
			line:       "From carol@example.com Mon Jan 1 00:00:00 +0200 2024",
			wantSender: "carol@example.com",
			wantYear:   2024,
			wantOK:     true,
		},
		{
			name:       "trailing remote from",
			line:       "From dave@example.com Mon Jan 1 00:00:00 2024 remote from mail.example.com",
			wantSender: "dave@example.com",
			wantYear:   2024,
			wantOK:     true,
		},
		{
			name:       "mailer daemon sender",
			line:       "From MAILER-DAEMON Sat Jan 3 01:05:34 1996",
			wantSender: "MAILER-DAEMON",
			wantYear:   1996,
			wantOK:     true,
		},
		{name: "escaped", line: ">From alice@example.com Tue Mar 15 10:00:00 2022", wantOK: false},
		{name: "body text", line: "From this is not a separator", wantOK: false},
		{name: "no date", line: "From alice@example.com hello there world today", wantOK: false},
		{name: "too short", line: "From alice@example.com", wantOK: false},
		{name: "not from", line: "Subject: From here to there", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, date, ok := parseSeparator([]byte(tt.line + "\n"))
			if ok != tt.wantOK {
				t.Fatalf("parseSeparator(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if sender != tt.wantSender {
				t.Errorf("sender = %q, want %q", sender, tt.wantSender)
			}
			if date.Year() != tt.wantYear {
				t.Errorf("year = %d, want %d", date.Year(), tt.wantYear)
			}
			if date.IsZero() {
				t.Error("date is zero")
			}
		})
	}
}
