package models

import "testing"

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"coordinator role", RoleCoordinator, true},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_CanMutate(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin mutates", RoleAdmin, true},
		{"coordinator mutates", RoleCoordinator, true},
		{"viewer is read-only", RoleViewer, false},
		{"unknown role is read-only", "guest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{Role: tt.role}
			if user.CanMutate() != tt.expected {
				t.Errorf("CanMutate() with role %s = %v, want %v", tt.role, user.CanMutate(), tt.expected)
			}
		})
	}
}
