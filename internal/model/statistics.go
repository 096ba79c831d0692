package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusCount pairs a submission status with how many submissions hold it
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// TypeCount pairs a submission type with its submission count
type TypeCount struct {
	SubmissionType string `json:"submission_type"`
	Count          int64  `json:"count"`
}

// MedicineRanking ranks a medicine by how much of it was requested/distributed
type MedicineRanking struct {
	MedicineID    uuid.UUID `json:"medicine_id"`
	MedicineName  string    `json:"medicine_name"`
	MedicineCode  string    `json:"medicine_code"`
	TotalQuantity float64   `json:"total_quantity"`
	TotalValue    float64   `json:"total_value"`
}

// FarmerGroupRanking ranks a farmer group by submission volume
type FarmerGroupRanking struct {
	FarmerGroupID   uuid.UUID `json:"farmer_group_id"`
	FarmerGroupName string    `json:"farmer_group_name"`
	District        string    `json:"district"`
	SubmissionCount int64     `json:"submission_count"`
}

// StatisticsResponse aggregates distribution activity over a date range
type StatisticsResponse struct {
	TimeRangeStartDate   time.Time            `json:"time_range_start_date"`
	TimeRangeEndDate     time.Time            `json:"time_range_end_date"`
	SubmissionsByStatus  []StatusCount        `json:"submissions_by_status"`
	SubmissionsByType    []TypeCount          `json:"submissions_by_type"`
	TotalRequestedQty    float64              `json:"total_requested_qty"`
	TotalApprovedQty     float64              `json:"total_approved_qty"`
	TotalDistributedQty  float64              `json:"total_distributed_qty"`
	TopRequestedMedicine []MedicineRanking    `json:"top_requested_medicines"`
	TopFarmerGroups      []FarmerGroupRanking `json:"top_farmer_groups"`
}
