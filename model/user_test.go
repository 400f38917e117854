package model

import (
	"testing"
	"time"
)

func TestActiveForAuthentication(t *testing.T) {
	user := &User{}
	if !user.ActiveForAuthentication() {
		t.Fatalf("expected fresh account to be active")
	}

	now := time.Now()
	user.DeactivatedAt = &now
	if user.ActiveForAuthentication() {
		t.Fatalf("expected deactivated account to be inactive")
	}
}

func TestApproved_IndividualAlwaysApproved(t *testing.T) {
	user := &User{AccessType: AccessTypeIndividual}
	if !user.Approved() {
		t.Fatalf("expected individual to be approved without approved_at")
	}
}

func TestApproved_LegalEntityValidityWindow(t *testing.T) {
	user := &User{AccessType: AccessTypeLegalEntity}
	if user.Approved() {
		t.Fatalf("expected unapproved legal entity to not be approved")
	}

	recent := time.Now().Add(-30 * 24 * time.Hour)
	user.ApprovedAt = &recent
	if !user.Approved() {
		t.Fatalf("expected recently approved legal entity to be approved")
	}

	stale := time.Now().Add(-366 * 24 * time.Hour)
	user.ApprovedAt = &stale
	if user.Approved() {
		t.Fatalf("expected year-old approval to have expired")
	}
}

func TestPendingDocuments(t *testing.T) {
	individual := &User{AccessType: AccessTypeIndividual}
	if !individual.PendingDocuments() {
		t.Fatalf("expected individual without documents to be pending")
	}

	individual.Doc12URL = "https://cdn.example.com/id.png"
	if !individual.PendingDocuments() {
		t.Fatalf("expected individual with one document to still be pending")
	}

	individual.Doc13URL = "https://cdn.example.com/residence.png"
	if individual.PendingDocuments() {
		t.Fatalf("expected individual with both documents to not be pending")
	}

	organization := &User{AccessType: AccessTypeLegalEntity}
	if organization.PendingDocuments() {
		t.Fatalf("expected legal entity to never be pending documents")
	}
}

func TestDocumentsList(t *testing.T) {
	individual := &User{AccessType: AccessTypeIndividual}
	slots := individual.DocumentsList()
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots for individual, got %d", len(slots))
	}
	if slots[0] != "doc12_url" || slots[1] != "doc13_url" {
		t.Fatalf("unexpected individual slots: %v", slots)
	}

	organization := &User{AccessType: AccessTypeLegalEntity}
	slots = organization.DocumentsList()
	if len(slots) != 13 {
		t.Fatalf("expected 13 slots for legal entity, got %d", len(slots))
	}
	if slots[0] != "doc1_url" || slots[12] != "doc13_url" {
		t.Fatalf("unexpected legal entity slots: %v", slots)
	}
}

func TestDocumentURL(t *testing.T) {
	user := &User{Doc1URL: "first", Doc13URL: "last"}
	if got := user.DocumentURL(1); got != "first" {
		t.Fatalf("expected first, got %q", got)
	}
	if got := user.DocumentURL(13); got != "last" {
		t.Fatalf("expected last, got %q", got)
	}
	if got := user.DocumentURL(0); got != "" {
		t.Fatalf("expected empty for out-of-range slot, got %q", got)
	}
	if got := user.DocumentURL(14); got != "" {
		t.Fatalf("expected empty for out-of-range slot, got %q", got)
	}
}

func TestIsStaff(t *testing.T) {
	user := &User{}
	if user.IsStaff() {
		t.Fatalf("expected account without roles to not be staff")
	}
	user.Staffs = []int{StaffTeam}
	if !user.IsStaff() {
		t.Fatalf("expected account with a role to be staff")
	}
}

func TestAccessTypeString(t *testing.T) {
	if got := AccessTypeIndividual.String(); got != "individual" {
		t.Fatalf("expected individual, got %q", got)
	}
	if got := AccessTypeLegalEntity.String(); got != "legal_entity" {
		t.Fatalf("expected legal_entity, got %q", got)
	}
}
