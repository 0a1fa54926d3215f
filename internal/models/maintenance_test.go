package models

import "testing"

func TestIsValidMaintenanceType(t *testing.T) {
	tests := []struct {
		name     string
		mtype    MaintenanceType
		expected bool
	}{
		{"preventive", MaintenancePreventive, true},
		{"corrective", MaintenanceCorrective, true},
		{"invalid type", "PREDICTIVO", false},
		{"empty type", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidMaintenanceType(tt.mtype)
			if result != tt.expected {
				t.Errorf("IsValidMaintenanceType(%s) = %v, want %v", tt.mtype, result, tt.expected)
			}
		})
	}
}

func TestIsValidMaintenanceStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   MaintenanceStatus
		expected bool
	}{
		{"scheduled", MaintenanceScheduled, true},
		{"in progress", MaintenanceInProgress, true},
		{"rescheduled", MaintenanceRescheduled, true},
		{"finished", MaintenanceFinished, true},
		{"invalid status", "CANCELADO", false},
		{"empty status", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidMaintenanceStatus(tt.status)
			if result != tt.expected {
				t.Errorf("IsValidMaintenanceStatus(%s) = %v, want %v", tt.status, result, tt.expected)
			}
		})
	}
}

func TestMaintenance_Unfinished(t *testing.T) {
	tests := []struct {
		name     string
		status   MaintenanceStatus
		expected bool
	}{
		{"scheduled blocks", MaintenanceScheduled, true},
		{"in progress blocks", MaintenanceInProgress, true},
		{"rescheduled blocks", MaintenanceRescheduled, true},
		{"finished does not block", MaintenanceFinished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Maintenance{Status: tt.status}
			if m.Unfinished() != tt.expected {
				t.Errorf("Unfinished() with %s = %v, want %v", tt.status, m.Unfinished(), tt.expected)
			}
		})
	}
}
