package store

import (
	"supplier-portal/internal/model"

	"gorm.io/datatypes"
)

// SeedData is the fixed registry loaded at start
type SeedData struct {
	Suppliers  []*model.Supplier
	OrderLinks []model.OrderLink
	Issues     []*model.IssueRecord
	Complaints []*model.Complaint
}

// DemoData returns the registry the portal ships with
func DemoData() SeedData {
	return SeedData{
		Suppliers: []*model.Supplier{
			{
				ID:           "1",
				Name:         "Fornecedor Exemplo LTDA",
				TaxID:        "12.345.678/0001-90",
				Contact:      "compras@fornecedor.com.br",
				AverageScore: 4.8,
				Criteria:     model.Criteria{Quality: 5, Delivery: 4.5, Support: 5},
				Volume:       150,
				Occurrences:  2,
				Segment:      "Logística",
				Items: []model.OrderItem{
					{ID: "i1", Name: "Cabo de alimentação 2m", Quantity: 50, Unit: "un"},
					{ID: "i2", Name: "Chave de fenda Phillips", Quantity: 20, Unit: "un"},
					{ID: "i3", Name: "Parafuso M6", Quantity: 200, Unit: "un"},
				},
			},
			{
				ID:           "2",
				Name:         "Indústria & Cia ME",
				TaxID:        "98.765.432/0001-10",
				Contact:      "contato@industriacia.com.br",
				AverageScore: 4.2,
				Criteria:     model.Criteria{Quality: 4, Delivery: 4.5, Support: 4},
				Volume:       85,
				Occurrences:  1,
				Segment:      "Periféricos",
				Items: []model.OrderItem{
					{ID: "i4", Name: "Luvas de proteção (M)", Quantity: 100, Unit: "par"},
					{ID: "i5", Name: "Máscara PFF2", Quantity: 300, Unit: "un"},
				},
				Warnings: 1,
				WarningLogs: []model.WarningLog{
					{Date: "2025-05-10", Reason: "Atraso crítico na entrega de EPIs para a unidade SESI.", Manager: "Carlos Gestor"},
				},
			},
			{
				ID:           "3",
				Name:         "TecnoGlobal S.A.",
				TaxID:        "11.222.333/0001-44",
				Contact:      "ti@tecno.com",
				AverageScore: 4.9,
				Criteria:     model.Criteria{Quality: 5, Delivery: 5, Support: 4.8},
				Volume:       210,
				Segment:      "TI",
			},
			{
				ID:           "4",
				Name:         "Madeiras Brasil",
				TaxID:        "22.333.444/0001-55",
				Contact:      "vendas@madeiras.com",
				AverageScore: 3.5,
				Criteria:     model.Criteria{Quality: 3.5, Delivery: 3, Support: 4},
				Volume:       45,
				Occurrences:  3,
				Segment:      "Construção",
				Warnings:     2,
				WarningLogs: []model.WarningLog{
					{Date: "2025-02-15", Reason: "Divergência recorrente de nota fiscal e carga física.", Manager: "Ana Auditoria"},
					{Date: "2025-06-20", Reason: "Madeira entregue sem certificação ambiental exigida em contrato.", Manager: "João Silva"},
				},
			},
			{
				ID:           "5",
				Name:         "Metalúrgica Ferro Forte",
				TaxID:        "33.444.555/0001-66",
				Contact:      "contato@ferroforte.com",
				AverageScore: 1.8,
				Criteria:     model.Criteria{Quality: 2, Delivery: 1.5, Support: 2},
				Volume:       30,
				Occurrences:  8,
				Segment:      "Metalurgia",
				Warnings:     3,
				IsBlocked:    true,
				WarningLogs: []model.WarningLog{
					{Date: "2024-12-01", Reason: "Material com oxidação severa em 40% do lote.", Manager: "Marcos Qualidade"},
					{Date: "2025-03-12", Reason: "Interrupção de linha de produção por falta de insumos programados.", Manager: "Marcos Qualidade"},
					{Date: "2025-08-01", Reason: "Recusa sistemática em atender chamados de garantia.", Manager: "Diretoria FINDES"},
				},
			},
			{
				ID:           "9",
				Name:         "Auto Peças Vale",
				TaxID:        "77.888.999/0001-00",
				Contact:      "vendas@valepartes.com",
				AverageScore: 1.2,
				Criteria:     model.Criteria{Quality: 1, Delivery: 1.5, Support: 1},
				Volume:       20,
				Occurrences:  12,
				Segment:      "Automotiva",
				Warnings:     3,
				IsBlocked:    true,
				WarningLogs: []model.WarningLog{
					{Date: "2025-01-10", Reason: "Peças falsificadas identificadas em auditoria.", Manager: "Compliance"},
					{Date: "2025-02-20", Reason: "Uso indevido da marca FINDES em material promocional.", Manager: "Jurídico"},
					{Date: "2025-03-30", Reason: "Acúmulo de 10 reclamações não resolvidas em 30 dias.", Manager: "Operações"},
				},
			},
		},
		OrderLinks: []model.OrderLink{
			{Reference: "OC-2025-001", SupplierID: "1"},
			{Reference: "FLUIG-123456", SupplierID: "1"},
			{Reference: "OC-2025-002", SupplierID: "2"},
			{Reference: "FLUIG-987654", SupplierID: "2"},
		},
		Issues: []*model.IssueRecord{
			{
				ID:                 "RP-2025-0043",
				Date:               "2025-10-12",
				OrderID:            "OC-2025-001",
				Segment:            "Logística",
				Type:               model.IssueLateDelivery,
				AffectedItemsCount: 1,
				AffectedItemsDetail: datatypes.JSONSlice[model.AffectedItem]{
					{Name: "Cabo 2m", Quantity: 50, Note: "Parcial entregue com 7 dias de atraso"},
				},
				AttachmentsCount: 2,
				AttachmentsList:  datatypes.JSONSlice[string]{"Comprovante_OC001.pdf", "Print_Rastreamento.png"},
				Status:           model.IssueClosed,
				Description:      "Previsto 05/10, recebido 12/10; sem aviso prévio do fornecedor. Impacto severo na linha de produção.",
				Author:           "João Silva",
			},
		},
		Complaints: []*model.Complaint{
			{
				ID:            "REC-001",
				SupplierName:  "Fornecedor Exemplo LTDA",
				SupplierEmail: "compras@fornecedor.com.br",
				Date:          "2025-10-24",
				Type:          model.IssueLateDelivery,
				Description:   "A carga de cabos de alimentação não chegou no prazo estipulado de 48h.",
				Status:        model.ComplaintPending,
			},
			{
				ID:            "REC-002",
				SupplierName:  "Indústria & Cia ME",
				SupplierEmail: "contato@industriacia.com.br",
				Date:          "2025-10-25",
				Type:          model.IssueDefectiveProduct,
				Description:   "Lote de luvas de proteção apresenta costuras frágeis.",
				Status:        model.ComplaintPending,
			},
			{
				ID:            "REC-003",
				SupplierName:  "Madeiras Brasil",
				SupplierEmail: "vendas@madeiras.com",
				Date:          "2025-10-26",
				Type:          model.IssueOrderMismatch,
				Description:   "Recebemos pinus em vez de eucalipto tratado.",
				Status:        model.ComplaintPending,
			},
		},
	}
}
