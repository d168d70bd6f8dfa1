// Package retsvc - Test trích xuất field và các parser locale Brazil.
package retsvc

import (
	"testing"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

func TestExtractField_FirstNonEmptyAlias(t *testing.T) {
	row := retmodels.Row{
		"Doc_Cliente": "",
		"CPF":         "123.456.789-01",
		"Telefone":    "11 98765-4321",
	}
	if got := ExtractField(row, FieldDoc); got != "123.456.789-01" {
		t.Errorf("ExtractField doc phải bỏ qua alias rỗng và lấy CPF, got %q", got)
	}
	if got := ExtractField(row, FieldPhone); got != "11 98765-4321" {
		t.Errorf("ExtractField phone sai: %q", got)
	}
	if got := ExtractField(row, FieldName); got != "" {
		t.Errorf("ExtractField name phải trả về rỗng khi không có cột nào, got %q", got)
	}
}

func TestNormalizeCPF(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"123.456.789-01", "12345678901", true},
		{"4567890", "00004567890", true},             // thiếu → pad số 0 bên trái
		{"99123456789012", "23456789012", true},      // thừa → giữ 11 số cuối
		{"11111111111", "", false},                   // blacklist: toàn 1 chữ số
		{"00000000000", "", false},
		{"", "", false},
		{"abc", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeCPF(tc.in)
		if ok != tc.valid || got != tc.want {
			t.Errorf("NormalizeCPF(%q) = (%q, %v), muốn (%q, %v)", tc.in, got, ok, tc.want, tc.valid)
		}
	}
}

func TestParseBRNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56}, // chấm nhóm + phẩy thập phân
		{"1,5", 1.5},          // chỉ phẩy → thập phân
		{"42", 42},
		{"R$ 10,00", 10},
		{"", 0},
		{"abc", 0}, // không parse được → 0, không lỗi
	}
	for _, tc := range cases {
		if got := ParseBRNumber(tc.in); got != tc.want {
			t.Errorf("ParseBRNumber(%q) = %v, muốn %v", tc.in, got, tc.want)
		}
	}
}

func TestParseBRDate(t *testing.T) {
	got, ok := ParseBRDate("15/06/2024 14:30:00")
	if !ok {
		t.Fatal("ParseBRDate không parse được ngày hợp lệ")
	}
	want := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseBRDate = %v, muốn %v", got, want)
	}

	if _, ok := ParseBRDate("05/03/24"); !ok {
		t.Error("ParseBRDate phải chấp nhận năm 2 chữ số")
	}
	if _, ok := ParseBRDate("2024-06-15"); !ok {
		t.Error("ParseBRDate phải chấp nhận ISO date")
	}
	if _, ok := ParseBRDate("không phải ngày"); ok {
		t.Error("ParseBRDate phải trả về false cho chuỗi rác")
	}
	if _, ok := ParseBRDate(""); ok {
		t.Error("ParseBRDate phải trả về false cho chuỗi rỗng")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"(11) 98765-4321", "11987654321", true},  // di động 11 số
		{"11 3456-7890", "1134567890", true},      // cố định 10 số
		{"+55 11 98765-4321", "11987654321", true}, // bỏ mã quốc gia 55
		{"12345", "12345", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		if ok != tc.valid || got != tc.want {
			t.Errorf("NormalizePhone(%q) = (%q, %v), muốn (%q, %v)", tc.in, got, ok, tc.want, tc.valid)
		}
	}
}
