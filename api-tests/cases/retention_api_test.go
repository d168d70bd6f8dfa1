package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"lavpop_bi_tests/utils"

	"github.com/stretchr/testify/assert"
)

// CSV mẫu cho các test import (định dạng xuất của POS, delimiter ;)
const (
	sampleSalesCSV = "Data_Hora;Doc_Cliente;Valor_Venda;Valor_Pago;Maquinas;Nome_Cliente;Telefone;Meio_de_Pagamento\n" +
		"15/06/2025 10:00:00;52998224725;30,00;30,00;Lavadora 01, Secadora 01;João Santos;(11) 98765-4321;PIX\n" +
		"25/06/2025 10:00:00;52998224725;25,00;25,00;Lavadora 02;João Santos;(11) 98765-4321;PIX\n" +
		"20/06/2025 15:00:00;16899535009;20,00;20,00;Secadora 02;Maria Silva;;Cartão\n"

	sampleCustomersCSV = "Documento;Nome;Telefone;Email;Data_Cadastro;Saldo_Carteira;Quantidade_Compras;Total_Compras;Data_Ultima_Compra\n" +
		"52998224725;João Santos;(11) 98765-4321;joao@example.com;01/01/2025;12,50;15;450,00;25/06/2025\n"

	sampleSegmentationCSV = "Documento,Segmento,Nome,Telefone\n" +
		"52998224725,VIP,João Santos,11987654321\n"
)

// TestRetentionModule kiểm tra toàn bộ API của module retention + ingest + settings.
func TestRetentionModule(t *testing.T) {
	baseURL := "http://localhost:8080/api/v1"
	waitForHealth(baseURL, 10, 1*time.Second, t)

	client := utils.NewHTTPClient(baseURL, 30)

	// ============================================
	// TEST INGEST (import CSV)
	// ============================================
	t.Run("📥 Ingest CSV Import", func(t *testing.T) {
		t.Run("UPLOAD - Import file bán hàng", func(t *testing.T) {
			resp, body, err := client.UploadFile("/ingest/sales", "vendas.csv", []byte(sampleSalesCSV))
			if err != nil {
				t.Fatalf("❌ Lỗi khi upload file bán hàng: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode, "Upload sales phải trả 200")

			result := parseEnvelope(t, body)
			assert.Equal(t, "success", result["status"])
			data := dataObject(t, result)
			assert.Equal(t, "sales", data["fileType"])
			assert.Equal(t, float64(3), data["total"], "3 dòng dữ liệu trong file")
		})

		t.Run("UPLOAD - Import sổ đăng ký khách", func(t *testing.T) {
			resp, body, err := client.UploadFile("/ingest/customers", "clientes.csv", []byte(sampleCustomersCSV))
			if err != nil {
				t.Fatalf("❌ Lỗi khi upload sổ đăng ký: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			data := dataObject(t, result)
			assert.Equal(t, "customers", data["fileType"])
		})

		t.Run("UPLOAD - Import feed phân khúc qua auto-detect", func(t *testing.T) {
			resp, body, err := client.UploadFile("/ingest/upload", "segmentos.csv", []byte(sampleSegmentationCSV))
			if err != nil {
				t.Fatalf("❌ Lỗi khi upload feed phân khúc: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			data := dataObject(t, result)
			assert.Equal(t, "segmentation", data["fileType"], "Auto-detect phải nhận ra file phân khúc")
		})

		t.Run("UPLOAD - Import lại cùng file không tạo bản ghi trùng", func(t *testing.T) {
			resp, body, err := client.UploadFile("/ingest/sales", "vendas.csv", []byte(sampleSalesCSV))
			if err != nil {
				t.Fatalf("❌ Lỗi khi upload lại file bán hàng: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			data := dataObject(t, result)
			inserted, _ := data["inserted"].(float64)
			assert.Equal(t, float64(0), inserted, "Upload lại phải không insert thêm (idempotent theo import hash)")
		})

		t.Run("UPLOAD - File rỗng phải bị từ chối", func(t *testing.T) {
			resp, body, err := client.UploadFile("/ingest/sales", "empty.csv", []byte(""))
			if err != nil {
				t.Fatalf("❌ Lỗi khi upload file rỗng: %v", err)
			}
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "File rỗng phải trả 400")

			result := parseEnvelope(t, body)
			assert.Equal(t, "error", result["status"])
		})

		t.Run("READ - Lịch sử upload", func(t *testing.T) {
			resp, body, err := client.GET("/ingest/history")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy lịch sử upload: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			history := dataArray(t, result)
			assert.NotEmpty(t, history, "Phải có ít nhất 1 bản ghi lịch sử sau các lần upload")
		})
	})

	// ============================================
	// TEST RETENTION ANALYTICS
	// ============================================
	t.Run("📊 Retention Analytics", func(t *testing.T) {
		t.Run("READ - Object phân tích tổng hợp", func(t *testing.T) {
			resp, body, err := client.GET("/retention/analytics")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy analytics: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			assert.Equal(t, "success", result["status"])
			data := dataObject(t, result)

			total, _ := data["totalCustomers"].(float64)
			assert.GreaterOrEqual(t, total, float64(2), "Phải có ít nhất 2 khách sau import")

			for _, key := range []string{"activeCustomers", "lostCustomers", "healthRate", "all", "active", "lost", "campaignReady"} {
				_, ok := data[key]
				assert.True(t, ok, fmt.Sprintf("Thiếu field %s trong object analytics", key))
			}
		})

		t.Run("READ - Analytics với mốc thời gian cố định", func(t *testing.T) {
			resp, body, err := client.GET("/retention/analytics?now=2025-08-01")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy analytics theo mốc: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			assert.Equal(t, "success", result["status"])
		})

		t.Run("READ - Mốc thời gian sai định dạng phải bị từ chối", func(t *testing.T) {
			resp, body, err := client.GET("/retention/analytics?now=01-08-2025")
			if err != nil {
				t.Fatalf("❌ Lỗi khi gọi analytics: %v", err)
			}
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			result := parseEnvelope(t, body)
			assert.Equal(t, "error", result["status"])
		})

		t.Run("READ - Bản đồ rủi ro", func(t *testing.T) {
			resp, body, err := client.GET("/retention/risk-map")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy risk map: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			points := dataArray(t, result)
			if len(points) > 0 {
				point, _ := points[0].(map[string]interface{})
				for _, key := range []string{"doc", "x", "y", "radius", "riskLevel"} {
					_, ok := point[key]
					assert.True(t, ok, fmt.Sprintf("Thiếu field %s trong điểm risk map", key))
				}
			}
		})

		t.Run("READ - Histogram chu kỳ ghé", func(t *testing.T) {
			resp, body, err := client.GET("/retention/interval-histogram")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy histogram: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			buckets := dataArray(t, result)
			assert.Len(t, buckets, 12, "Histogram phải có đúng 12 bin 10 ngày")
		})

		t.Run("READ - Cohort quay lại", func(t *testing.T) {
			resp, body, err := client.GET("/retention/cohorts")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy cohorts: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			rates := dataArray(t, result)
			assert.Len(t, rates, 3, "Phải có 3 mốc lookback 30/60/90")
			for _, item := range rates {
				r, _ := item.(map[string]interface{})
				rate, _ := r["rate"].(float64)
				assert.GreaterOrEqual(t, rate, float64(0))
				assert.LessOrEqual(t, rate, float64(100))
			}
		})

		t.Run("READ - Xu hướng khách mới", func(t *testing.T) {
			resp, body, err := client.GET("/retention/acquisition-trend?days=7")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy acquisition trend: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			data := dataObject(t, result)
			points, _ := data["points"].([]interface{})
			assert.Len(t, points, 7, "7 ngày phải cho đúng 7 điểm (zero-filled)")
		})

		t.Run("CREATE - Recompute và đọc lại snapshot", func(t *testing.T) {
			resp, body, err := client.POST("/retention/recompute", nil)
			if err != nil {
				t.Fatalf("❌ Lỗi khi recompute: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			assert.Equal(t, "success", result["status"])

			resp, body, err = client.GET("/retention/snapshot")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy snapshot: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result = parseEnvelope(t, body)
			data := dataObject(t, result)
			_, ok := data["result"]
			assert.True(t, ok, "Snapshot phải chứa object kết quả phân tích")
		})
	})

	// ============================================
	// TEST SETTINGS
	// ============================================
	t.Run("⚙️ App Settings", func(t *testing.T) {
		t.Run("READ - Lấy cấu hình hiện tại", func(t *testing.T) {
			resp, body, err := client.GET("/settings/")
			if err != nil {
				t.Fatalf("❌ Lỗi khi lấy settings: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			data := dataObject(t, result)
			for _, key := range []string{"cashbackPercent", "cashbackStartDate", "lostThresholdDays"} {
				_, ok := data[key]
				assert.True(t, ok, fmt.Sprintf("Thiếu field %s trong settings", key))
			}
		})

		t.Run("UPDATE - Cập nhật cấu hình hợp lệ", func(t *testing.T) {
			payload := map[string]interface{}{
				"cashbackPercent":   7.5,
				"cashbackStartDate": "2024-06-01",
				"lostThresholdDays": 60,
			}
			resp, body, err := client.PUT("/settings/", payload)
			if err != nil {
				t.Fatalf("❌ Lỗi khi cập nhật settings: %v", err)
			}
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			result := parseEnvelope(t, body)
			assert.Equal(t, "success", result["status"])
		})

		t.Run("UPDATE - Cấu hình không hợp lệ phải bị từ chối", func(t *testing.T) {
			payload := map[string]interface{}{
				"cashbackPercent":   150, // quá 100%
				"cashbackStartDate": "2024-06-01",
				"lostThresholdDays": 60,
			}
			resp, body, err := client.PUT("/settings/", payload)
			if err != nil {
				t.Fatalf("❌ Lỗi khi cập nhật settings: %v", err)
			}
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			result := parseEnvelope(t, body)
			assert.Equal(t, "error", result["status"])
		})
	})
}
