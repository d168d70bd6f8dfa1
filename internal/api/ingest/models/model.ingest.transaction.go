// Package models - các document Mongo của domain ingest: giao dịch POS,
// profile khách, phân khúc, lịch sử upload. Timestamp lưu Unix ms.
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Transaction là 1 dòng bán hàng POS đã import (transactions).
// ImportHash chống import trùng: sha256(Data_Hora|Doc_Cliente|Valor_Venda|Maquinas)[:32].
type Transaction struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ImportHash string             `json:"importHash" bson:"importHash"`

	// Giá trị gốc từ CSV giữ nguyên để engine re-parse (locale Brazil)
	DataHoraRaw   string `json:"dataHoraRaw" bson:"dataHoraRaw"`
	ValorVendaRaw string `json:"valorVendaRaw" bson:"valorVendaRaw"`
	ValorPagoRaw  string `json:"valorPagoRaw" bson:"valorPagoRaw"`

	DataHora      int64   `json:"dataHora" bson:"dataHora"` // Unix ms
	DocCliente    string  `json:"docCliente" bson:"docCliente"`
	Nome          string  `json:"nome,omitempty" bson:"nome,omitempty"`
	Telefone      string  `json:"telefone,omitempty" bson:"telefone,omitempty"`
	ValorVenda    float64 `json:"valorVenda" bson:"valorVenda"`
	ValorPago     float64 `json:"valorPago" bson:"valorPago"`
	Maquinas      string  `json:"maquinas,omitempty" bson:"maquinas,omitempty"`
	MeioPagamento string  `json:"meioPagamento,omitempty" bson:"meioPagamento,omitempty"`

	// Phân loại + đếm máy tính sẵn lúc import
	TransactionType string  `json:"transactionType" bson:"transactionType"` // TYPE_1 | TYPE_2 | TYPE_3 | UNKNOWN
	IsRecarga       bool    `json:"isRecarga" bson:"isRecarga"`
	WashCount       int     `json:"washCount" bson:"washCount"`
	DryCount        int     `json:"dryCount" bson:"dryCount"`
	Cashback        float64 `json:"cashback" bson:"cashback"`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
}
