// Package seed loads a development dataset: one admin login plus a handful
// of beneficiaries and cases to click around with.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paceaid/internal/store"
	"paceaid/internal/utils"
	"paceaid/pkg/types"

	"github.com/k0kubun/pp"
	"golang.org/x/crypto/bcrypt"
)

const (
	adminEmail    = "admin@paceaid.local"
	adminPassword = "changeme"
)

// SeedAdminUser creates the bootstrap admin account if it does not exist.
// The password is a placeholder; rotate it after first login.
func SeedAdminUser(ctx context.Context, users *store.UserRepository) error {

	_, err := users.UserByEmail(ctx, adminEmail)
	if err == nil {
		fmt.Printf("  admin user %s already exists, skipping\n", adminEmail)
		return nil
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := &types.User{
		Name:         "PACE Admin",
		Email:        adminEmail,
		PasswordHash: string(hash),
		Role:         types.UserRoleAdmin,
	}

	if err := users.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	fmt.Printf("  created admin user %s (password %q)\n", adminEmail, adminPassword)
	return nil
}

type sampleCase struct {
	beneficiary types.Beneficiary
	caseType    string
	caseTitle   string
	court       *string
	notes       *string
}

// SeedSampleData inserts a few beneficiaries with one case each. Dedup is by
// the same name+phone lookup intake uses, so reruns are safe.
func SeedSampleData(ctx context.Context, beneficiaries *store.BeneficiaryRepository, cases *store.CaseRepository) error {

	samples := []sampleCase{
		{
			beneficiary: types.Beneficiary{
				Name:          "Asha Devi",
				ContactNumber: utils.StringPtr("+91 98765 43210"),
				Address:       utils.StringPtr("Ward 4, Rajpur"),
				DateOfFiling:  time.Now().AddDate(0, -2, 0),
				HasSmartphone: true,
				CanRead:       true,
			},
			caseType:  "domestic violence",
			caseTitle: "Protection order application",
			court:     utils.StringPtr("District Court"),
		},
		{
			beneficiary: types.Beneficiary{
				Name:          "Ramesh Kumar",
				ContactNumber: utils.StringPtr("+91 91234 56780"),
				Address:       utils.StringPtr("Village Bhatoli"),
				DateOfFiling:  time.Now().AddDate(0, -1, 0),
				HasSmartphone: false,
				CanRead:       true,
			},
			caseType:  "land dispute",
			caseTitle: "Boundary encroachment complaint",
			notes:     utils.StringPtr("Patwari report pending"),
		},
		{
			beneficiary: types.Beneficiary{
				Name:          "Sunita Bai",
				ContactNumber: utils.StringPtr("+91 99887 76655"),
				DateOfFiling:  time.Now(),
				HasSmartphone: false,
				CanRead:       false,
			},
			caseType:  "pension",
			caseTitle: "Widow pension application follow-up",
		},
	}

	for _, sample := range samples {
		existing, err := beneficiaries.FindByNameAndPhone(ctx, sample.beneficiary.Name, utils.PtrString(sample.beneficiary.ContactNumber))
		if err == nil {
			fmt.Printf("  beneficiary %s already exists, skipping\n", existing.Name)
			continue
		}
		if !errors.Is(err, types.ErrBeneficiaryNotFound) {
			return fmt.Errorf("failed to check for beneficiary %s: %w", sample.beneficiary.Name, err)
		}

		b := sample.beneficiary
		if err := beneficiaries.CreateBeneficiary(ctx, &b); err != nil {
			return fmt.Errorf("failed to create beneficiary %s: %w", b.Name, err)
		}

		c := &types.Case{
			BeneficiaryID: b.ID,
			CaseType:      sample.caseType,
			CaseTitle:     sample.caseTitle,
			Court:         sample.court,
			Notes:         sample.notes,
		}
		if err := cases.CreateCase(ctx, c); err != nil {
			return fmt.Errorf("failed to create case for %s: %w", b.Name, err)
		}

		pp.Println(c.CaseCode, b.Name)
	}

	return nil
}
