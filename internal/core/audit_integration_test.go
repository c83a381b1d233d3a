package core

import (
	"context"
	"os"
	"testing"

	"github.com/soapbridge/soapbridge/internal/db"
)

func TestAuditConsistencyWithPostgres(t *testing.T) {
	databaseURL := os.Getenv("SOAPBRIDGE_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("SOAPBRIDGE_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(databaseURL)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer database.Close()

	audit := NewAuditService(database, nil, "integration")

	tc, err := audit.Record(ctx, RecordInput{
		TraceID:   "trace-int",
		ToolName:  "manage_soap_services",
		Action:    "import_wsdl",
		Arguments: map[string]any{"projectPath": "/p.xml", "action": "import_wsdl", "wsdlUrl": "http://x/?wsdl"},
		Result:    TextResult("# WSDL Import"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := database.GetToolCall(ctx, tc.ToolCallID)
	if err != nil || got == nil {
		t.Fatalf("expected tool call in DB, got err=%v tc=%v", err, got)
	}
	if got.EvidenceHash != tc.EvidenceHash {
		t.Fatalf("evidence hash mismatch: db=%s record=%s", got.EvidenceHash, tc.EvidenceHash)
	}
	if got.Status != StatusOK || got.Action != "import_wsdl" {
		t.Fatalf("unexpected row: status=%q action=%q", got.Status, got.Action)
	}

	list, err := database.ListToolCalls(ctx, db.ToolCallListFilter{ToolName: "manage_soap_services", Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("expected listed tool calls")
	}
}
