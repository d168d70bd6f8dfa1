package ingestvc

import (
	"errors"
	"testing"

	ingestmodels "lavpop_bi/internal/api/ingest/models"
	"lavpop_bi/internal/common"
)

func TestCleanCSV(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"\uFEFFData_Hora;Doc_Cliente\n", "Data_Hora;Doc_Cliente"},
		{"IMTString(1234): Data_Hora;Doc_Cliente", "Data_Hora;Doc_Cliente"},
		{"\uFEFFIMTString(99): Documento,Nome", "Documento,Nome"},
		{"  Data_Hora,Valor  ", "Data_Hora,Valor"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := CleanCSV(tc.in); got != tc.want {
			t.Errorf("CleanCSV(%q) = %q, muốn %q", tc.in, got, tc.want)
		}
	}
}

func TestDetectDelimiter(t *testing.T) {
	if got := DetectDelimiter("Data_Hora;Doc_Cliente;Valor_Venda"); got != ';' {
		t.Errorf("header nhiều ; phải cho ';', got %q", got)
	}
	if got := DetectDelimiter("Data_Hora,Doc_Cliente,Valor_Venda"); got != ',' {
		t.Errorf("header nhiều , phải cho ',', got %q", got)
	}
	// Hòa → mặc định ','
	if got := DetectDelimiter("Data_Hora"); got != ',' {
		t.Errorf("không có dấu phân cách phải mặc định ',', got %q", got)
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("\uFEFFData_Hora;Doc_Cliente;Valor_Venda\n15/06/2024 10:00:00;52998224725;30,00\n16/06/2024 11:00:00;16899535009;15,50\n")
	rows, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV lỗi: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("muốn 2 row, got %d", len(rows))
	}
	if rows[0]["Doc_Cliente"] != "52998224725" || rows[0]["Valor_Venda"] != "30,00" {
		t.Errorf("row đầu parse sai: %v", rows[0])
	}
	if rows[1]["Data_Hora"] != "16/06/2024 11:00:00" {
		t.Errorf("row thứ hai parse sai: %v", rows[1])
	}
}

func TestParseCSV_ShortRow(t *testing.T) {
	// Row thiếu cột: các cột còn lại vắng mặt thay vì lỗi
	data := []byte("Documento,Nome,Telefone\n52998224725,Maria\n")
	rows, err := ParseCSV(data)
	if err != nil {
		t.Fatalf("ParseCSV lỗi: %v", err)
	}
	if rows[0]["Documento"] != "52998224725" || rows[0]["Nome"] != "Maria" {
		t.Errorf("row thiếu cột parse sai: %v", rows[0])
	}
	if _, ok := rows[0]["Telefone"]; ok {
		t.Error("cột thiếu không được xuất hiện trong row")
	}
}

func TestParseCSV_Empty(t *testing.T) {
	for _, data := range [][]byte{nil, []byte(""), []byte("\uFEFF"), []byte("Data_Hora;Doc_Cliente\n")} {
		_, err := ParseCSV(data)
		if !errors.Is(err, common.ErrIngestEmptyFile) {
			t.Errorf("ParseCSV(%q) phải trả về ErrIngestEmptyFile, got %v", data, err)
		}
	}
}

func TestDetectFileType(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"sales theo data_hora", "Data_Hora;Doc_Cliente;Valor_Venda\n...", ingestmodels.FileTypeSales},
		{"sales theo maquinas", "doc;maquinas;valor\n...", ingestmodels.FileTypeSales},
		{"segmentation", "Documento,Segmento,Nome\n...", ingestmodels.FileTypeSegmentation},
		{"customers", "Documento,Nome,Saldo_Carteira\n...", ingestmodels.FileTypeCustomers},
		{"không nhận diện được", "a,b,c\n...", ingestmodels.FileTypeUnknown},
		// sales thắng khi header có cả hai nhóm marker
		{"sales ưu tiên trước customers", "Data_Hora;Documento\n...", ingestmodels.FileTypeSales},
	}
	for _, tc := range cases {
		if got := DetectFileType([]byte(tc.data)); got != tc.want {
			t.Errorf("%s: DetectFileType = %q, muốn %q", tc.name, got, tc.want)
		}
	}
}

func TestGenerateImportHash(t *testing.T) {
	h1 := GenerateImportHash("15/06/2024 10:00:00", "52998224725", "30,00", "Lavadora 01")
	h2 := GenerateImportHash("15/06/2024 10:00:00", "52998224725", "30,00", "Lavadora 01")
	h3 := GenerateImportHash("15/06/2024 10:00:00", "52998224725", "30,00", "Lavadora 02")

	if len(h1) != 32 {
		t.Errorf("hash phải dài 32 ký tự hex, got %d", len(h1))
	}
	if h1 != h2 {
		t.Error("cùng giá trị gốc phải cho cùng hash (upload lại không tạo bản ghi mới)")
	}
	if h1 == h3 {
		t.Error("khác máy phải cho hash khác")
	}
}
