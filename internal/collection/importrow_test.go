package collection

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"+54 9 11 5555-0001", "+5491155550001"},
		{"(011) 4555-0001", "01145550001"},
		{"1155550001", "1155550001"},
		{"+54911555", "+54911555"},
		{"1234567", ""},
		{"12345678901234567", ""},
		{"11-5555-000a", "115555000"},
		{"++5491155550001", ""},
		{"549+1155550001", ""},
		{"", ""},
		{12345678, ""},
		{nil, ""},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Errorf("NormalizePhone(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAmountARS(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{float64(12500), 12500},
		{float64(12500.6), 12501},
		{int(300), 300},
		{"12500", 12500},
		{"12.500", 12500},
		{"12500,50", 12501},
		{"12.500,50", 12501},
		{"$ 12.500", 12500},
		{"12.5", 13},
		{"0", 0},
		{"-150", 0},
		{"abc", 0},
		{"", 0},
		{nil, 0},
		{true, 0},
	}
	for _, c := range cases {
		if got := ParseAmountARS(c.in); got != c.want {
			t.Errorf("ParseAmountARS(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseDaysOverdue(t *testing.T) {
	cases := []struct {
		in   any
		want int
		ok   bool
	}{
		{float64(45), 45, true},
		{float64(45.9), 45, true},
		{float64(0), 0, true},
		{float64(-1), -1, false},
		{"30", 30, true},
		{" 30 ", 30, true},
		{"-5", -5, false},
		{"x", 0, false},
		{"", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDaysOverdue(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseDaysOverdue(%v) = (%d,%v), want (%d,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeImportRow(t *testing.T) {
	row, err := NormalizeImportRow(ImportRow{
		ClienteNombre: "  Carlos Gomez ",
		Telefono:      "11 5555-0001",
		Monto:         "12.500",
		DiasVencido:   float64(30),
		Obra:          " Obra Norte ",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := NormalizedRow{Name: "Carlos Gomez", Phone: "1155550001", AmountARS: 12500, DaysOverdue: 30, Note: "Obra Norte"}
	if row != want {
		t.Errorf("got %+v, want %+v", row, want)
	}

	cases := []struct {
		row  ImportRow
		want string
	}{
		{ImportRow{Telefono: "1155550001", Monto: 100, DiasVencido: 1}, "cliente_nombre es obligatorio"},
		{ImportRow{ClienteNombre: "X SA", Telefono: "abc", Monto: 100, DiasVencido: 1}, "telefono invalido"},
		{ImportRow{ClienteNombre: "X SA", Telefono: "1155550001", Monto: "0", DiasVencido: 1}, "monto debe ser mayor a 0"},
		{ImportRow{ClienteNombre: "X SA", Telefono: "1155550001", Monto: 100, DiasVencido: -3}, "dias_vencido debe ser >= 0"},
	}
	for _, c := range cases {
		_, err := NormalizeImportRow(c.row)
		if err == nil || err.Error() != c.want {
			t.Errorf("row %+v: err = %v, want %q", c.row, err, c.want)
		}
	}
}
