package store

import "testing"

func strPtr(s string) *string { return &s }

func TestMergeSettings(t *testing.T) {
	current := DefaultBusinessSettings("b1")

	merged := MergeSettings(current, SettingsPatch{
		SenderName:     strPtr("  Marta "),
		Pronoun:        strPtr("usted"),
		PaymentMethod:  strPtr("cbu"),
		PaymentDetails: strPtr(" 0123456789 "),
	})

	if merged.SenderName != "Marta" {
		t.Errorf("sender_name = %q", merged.SenderName)
	}
	if merged.Pronoun != "usted" {
		t.Errorf("pronoun = %q", merged.Pronoun)
	}
	if merged.PaymentMethod != "cbu" || merged.PaymentDetails != "0123456789" {
		t.Errorf("payment = %q/%q", merged.PaymentMethod, merged.PaymentDetails)
	}
	// Untouched fields keep their values.
	if merged.SenderRole != current.SenderRole || merged.Signature != current.Signature {
		t.Error("unpatched fields changed")
	}
}

func TestMergeSettingsEmptyFieldsKeepCurrent(t *testing.T) {
	current := DefaultBusinessSettings("b1")
	merged := MergeSettings(current, SettingsPatch{
		SenderName: strPtr("   "),
		Signature:  strPtr(""),
	})
	if merged.SenderName != current.SenderName || merged.Signature != current.Signature {
		t.Errorf("blank patch fields must keep prior values: %+v", merged)
	}
}

func TestMergeSettingsNormalizesEnums(t *testing.T) {
	current := DefaultBusinessSettings("b1")

	merged := MergeSettings(current, SettingsPatch{
		Pronoun:       strPtr("tu"),
		PaymentMethod: strPtr("bitcoin"),
	})
	if merged.Pronoun != "vos" {
		t.Errorf("pronoun = %q, want vos", merged.Pronoun)
	}
	if merged.PaymentMethod != "alias" {
		t.Errorf("payment_method = %q, want alias", merged.PaymentMethod)
	}
}

func TestMergeSettingsPaymentDetailsCanBeCleared(t *testing.T) {
	current := DefaultBusinessSettings("b1")
	current.PaymentDetails = "el.puente.mp"

	merged := MergeSettings(current, SettingsPatch{PaymentDetails: strPtr("")})
	if merged.PaymentDetails != "" {
		t.Errorf("payment_details = %q, want cleared", merged.PaymentDetails)
	}

	merged = MergeSettings(current, SettingsPatch{})
	if merged.PaymentDetails != "el.puente.mp" {
		t.Errorf("payment_details = %q, want kept", merged.PaymentDetails)
	}
}
