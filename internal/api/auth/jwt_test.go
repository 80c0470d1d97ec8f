package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

func testJWTCompany() *models.Company {
	return &models.Company{
		ID:          "company-1",
		Username:    "byggco",
		AnonymousID: "Bedrift-3F9A2C",
	}
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTService([]byte("test-secret-32-bytes-long!!!!!!!"), 15*time.Minute)
	company := testJWTCompany()

	token, err := svc.GenerateToken(company)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.CompanyID != company.ID {
		t.Errorf("company id = %s, want %s", claims.CompanyID, company.ID)
	}
	if claims.Username != company.Username {
		t.Errorf("username = %s, want %s", claims.Username, company.Username)
	}
	if claims.Issuer != "ressurstorg" {
		t.Errorf("issuer = %s", claims.Issuer)
	}
	if claims.Subject != company.ID {
		t.Errorf("subject = %s, want %s", claims.Subject, company.ID)
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService([]byte("test-secret-32-bytes-long!!!!!!!"), -time.Minute)

	token, err := svc.GenerateToken(testJWTCompany())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expired token should not validate")
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService([]byte("test-secret-32-bytes-long!!!!!!!"), 15*time.Minute)
	other := NewJWTService([]byte("another-secret-32-bytes-long!!!!"), 15*time.Minute)

	token, err := svc.GenerateToken(testJWTCompany())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should not validate")
	}
}

func TestJWTService_TamperedToken(t *testing.T) {
	svc := NewJWTService([]byte("test-secret-32-bytes-long!!!!!!!"), 15*time.Minute)

	token, err := svc.GenerateToken(testJWTCompany())
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token format")
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	if _, err := svc.ValidateToken(tampered); err == nil {
		t.Error("tampered token should not validate")
	}
}

func TestJWTService_GarbageToken(t *testing.T) {
	svc := NewJWTService([]byte("test-secret-32-bytes-long!!!!!!!"), 15*time.Minute)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.ValidateToken(token); err == nil {
			t.Errorf("token %q should not validate", token)
		}
	}
}
