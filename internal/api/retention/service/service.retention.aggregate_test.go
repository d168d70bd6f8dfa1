package retsvc

import (
	"math"
	"testing"
	"time"

	retmodels "lavpop_bi/internal/api/retention/models"
)

func TestCountMachines(t *testing.T) {
	cases := []struct {
		in   string
		wash int
		dry  int
	}{
		{"Lavadora 01, Secadora 02", 1, 1},
		{"LAVADORA 01, Lavadora 03, Secadora 02", 2, 1},
		{"Secadora 05", 0, 1},
		{"Recarga Carteira", 0, 0},
		{"", 0, 0},
	}
	for _, tc := range cases {
		wash, dry := CountMachines(tc.in)
		if wash != tc.wash || dry != tc.dry {
			t.Errorf("CountMachines(%q) = (%d, %d), muốn (%d, %d)", tc.in, wash, dry, tc.wash, tc.dry)
		}
	}
}

func TestClassifyTransaction(t *testing.T) {
	cases := []struct {
		name string
		row  retmodels.Row
		want string
	}{
		{"recarga thắng mọi rule khác", retmodels.Row{"Maquinas": "Recarga Carteira", "Meio_de_Pagamento": "PIX", "Valor_Venda": "50,00"}, TxTypeRecharge},
		{"trả bằng ví", retmodels.Row{"Maquinas": "Lavadora 01", "Meio_de_Pagamento": "Saldo da Carteira", "Valor_Venda": "15,00"}, TxTypeWallet},
		{"gross 0 có máy cũng là ví", retmodels.Row{"Maquinas": "Lavadora 01", "Meio_de_Pagamento": "PIX", "Valor_Venda": "0"}, TxTypeWallet},
		{"mua thường", retmodels.Row{"Maquinas": "Lavadora 01, Secadora 02", "Meio_de_Pagamento": "PIX", "Valor_Venda": "30,00"}, TxTypeNormal},
		{"không máy không gross", retmodels.Row{"Meio_de_Pagamento": "PIX"}, TxTypeUnknown},
	}
	for _, tc := range cases {
		if got := ClassifyTransaction(tc.row); got != tc.want {
			t.Errorf("%s: ClassifyTransaction = %q, muốn %q", tc.name, got, tc.want)
		}
	}
}

func TestAggregateTransactions(t *testing.T) {
	cashback := CashbackSettings{
		Percent:   10,
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	rows := []retmodels.Row{
		// 2 máy: net chia đều giữa giặt và sấy; trong kỳ cashback
		{"Doc_Cliente": "529.982.247-25", "Data_Hora": "10/06/2025 10:00:00", "Valor_Venda": "30,00", "Valor_Pago": "28,00", "Maquinas": "Lavadora 01, Secadora 02", "Nome": "João"},
		// Trước kỳ cashback → không cộng cashback
		{"Doc_Cliente": "52998224725", "Data_Hora": "10/05/2025 09:00:00", "Valor_Venda": "20,00", "Valor_Pago": "20,00", "Maquinas": "Lavadora 03"},
		// Nạp ví: tính tiền + lượt giao dịch nhưng không phải lượt dịch vụ
		{"Doc_Cliente": "52998224725", "Data_Hora": "15/06/2025 11:00:00", "Valor_Venda": "50,00", "Valor_Pago": "50,00", "Maquinas": "Recarga Carteira"},
		// CPF không hợp lệ → bỏ qua
		{"Doc_Cliente": "11111111111", "Data_Hora": "10/06/2025 10:00:00", "Valor_Venda": "10,00"},
		// Ngày rác → bỏ qua
		{"Doc_Cliente": "16899535009", "Data_Hora": "ngày nào đó", "Valor_Venda": "10,00"},
	}

	diag := NewRecorderDiagnostics()
	accs := AggregateTransactions(rows, cashback, diag)

	if len(accs) != 1 {
		t.Fatalf("muốn 1 khách hợp lệ, got %d", len(accs))
	}
	acc := accs["52998224725"]
	if acc == nil {
		t.Fatal("không tìm thấy accumulator của 52998224725")
	}

	if acc.txCount != 3 {
		t.Errorf("txCount = %d, muốn 3", acc.txCount)
	}
	if len(acc.visitDays) != 3 {
		t.Errorf("số ngày ghé distinct = %d, muốn 3", len(acc.visitDays))
	}
	if acc.name != "João" {
		t.Errorf("tên phải lấy từ row đầu tiên có tên, got %q", acc.name)
	}
	if acc.gross != 100 || acc.net != 98 {
		t.Errorf("gross/net = %v/%v, muốn 100/98", acc.gross, acc.net)
	}

	// Cashback: chỉ row 10/06 (30 → 3) và recarga 15/06 (50 → 5); row 10/05 trước kỳ
	if math.Abs(acc.cashback-8) > 1e-9 {
		t.Errorf("cashback = %v, muốn 8", acc.cashback)
	}

	if acc.washCount != 2 || acc.dryCount != 1 {
		t.Errorf("wash/dry = %d/%d, muốn 2/1", acc.washCount, acc.dryCount)
	}
	if acc.serviceUnits != 3 {
		t.Errorf("serviceUnits = %d, muốn 3 (recarga không tính)", acc.serviceUnits)
	}
	if acc.rechargeCount != 1 {
		t.Errorf("rechargeCount = %d, muốn 1", acc.rechargeCount)
	}

	// Chia net theo tỷ lệ máy: row 1 net 28 chia 14/14, row 2 net 20 toàn giặt
	if math.Abs(acc.washRevenue-34) > 1e-9 || math.Abs(acc.dryRevenue-14) > 1e-9 {
		t.Errorf("washRevenue/dryRevenue = %v/%v, muốn 34/14", acc.washRevenue, acc.dryRevenue)
	}

	if diag.Counters[DiagRowsMissingDoc] != 1 {
		t.Errorf("diagnostics %s = %d, muốn 1", DiagRowsMissingDoc, diag.Counters[DiagRowsMissingDoc])
	}
	if diag.Counters[DiagRowsInvalidDate] != 1 {
		t.Errorf("diagnostics %s = %d, muốn 1", DiagRowsInvalidDate, diag.Counters[DiagRowsInvalidDate])
	}
	if diag.Gauges[DiagCustomersTotal] != 1 {
		t.Errorf("diagnostics %s = %d, muốn 1", DiagCustomersTotal, diag.Gauges[DiagCustomersTotal])
	}
}
