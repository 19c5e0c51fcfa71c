// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package contacts

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/tenant-crm/internal/http/types"
	"github.com/canonical/tenant-crm/internal/logging"
	"github.com/canonical/tenant-crm/internal/monitoring"
	"github.com/canonical/tenant-crm/internal/storage"
	"github.com/canonical/tenant-crm/internal/tracing"
	dtypes "github.com/canonical/tenant-crm/internal/types"
)

func TestAPI_Endpoints(t *testing.T) {
	validBody := `{"first_name":"Ada","last_name":"Lovelace","contact_type":"Mentor","tags":["math"]}`

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/api/v0/contacts?page=2&size=5&contact_type=Mentor&priority=true",
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().ListContacts(gomock.Any(), ListOptions{Page: 2, Size: 5, ContactType: dtypes.ContactTypeMentor, PriorityOnly: true}).
					Return([]*dtypes.Contact{{ID: contactID, FirstName: "Ada"}}, int64(6), nil)
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var resp struct {
					Data []dtypes.Contact `json:"data"`
					Meta types.Pagination `json:"_meta"`
				}
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if len(resp.Data) != 1 || resp.Data[0].ID != contactID {
					t.Errorf("unexpected data %+v", resp.Data)
				}
				if resp.Meta.Page != 2 || resp.Meta.Size != 5 || resp.Meta.Total != 6 {
					t.Errorf("unexpected meta %+v", resp.Meta)
				}
			},
		},
		{
			name:           "list with invalid contact type",
			method:         http.MethodGet,
			path:           "/api/v0/contacts?contact_type=Nemesis",
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "list with invalid page",
			method:         http.MethodGet,
			path:           "/api/v0/contacts?page=0",
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/api/v0/contacts/" + contactID,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().GetContact(gomock.Any(), contactID).Return(&dtypes.Contact{ID: contactID, TenantID: tenantA}, nil)
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, rr *httptest.ResponseRecorder) {
				if strings.Contains(rr.Body.String(), tenantA) {
					t.Errorf("tenant identifier leaked: %s", rr.Body.String())
				}
			},
		},
		{
			name:   "get foreign contact",
			method: http.MethodGet,
			path:   "/api/v0/contacts/" + contactID,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().GetContact(gomock.Any(), contactID).Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "create",
			method: http.MethodPost,
			path:   "/api/v0/contacts",
			body:   validBody,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().CreateContact(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, c *dtypes.Contact) (*dtypes.Contact, error) {
						if c.FirstName != "Ada" || c.ContactType != dtypes.ContactTypeMentor || len(c.Tags) != 1 {
							t.Errorf("unexpected contact %+v", c)
						}
						c.ID = contactID
						return c, nil
					},
				)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "create with invalid email",
			method:         http.MethodPost,
			path:           "/api/v0/contacts",
			body:           `{"first_name":"Ada","last_name":"Lovelace","contact_type":"Mentor","email":"nope"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "create with unknown type",
			method:         http.MethodPost,
			path:           "/api/v0/contacts",
			body:           `{"first_name":"Ada","last_name":"Lovelace","contact_type":"Nemesis"}`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "create with malformed body",
			method:         http.MethodPost,
			path:           "/api/v0/contacts",
			body:           `{`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "update foreign contact",
			method: http.MethodPut,
			path:   "/api/v0/contacts/" + contactID,
			body:   validBody,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().UpdateContact(gomock.Any(), contactID, gomock.Any()).Return(nil, storage.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/api/v0/contacts/" + contactID,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().DeleteContact(gomock.Any(), contactID).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "service failure",
			method: http.MethodDelete,
			path:   "/api/v0/contacts/" + contactID,
			setupMocks: func(svc *MockServiceInterface) {
				svc.EXPECT().DeleteContact(gomock.Any(), contactID).Return(errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, rr *httptest.ResponseRecorder) {
				if strings.Contains(rr.Body.String(), "connection reset") {
					t.Errorf("internal error leaked: %s", rr.Body.String())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := NewMockServiceInterface(ctrl)
			tt.setupMocks(mockService)

			logger := logging.NewNoopLogger()
			mux := chi.NewMux()
			NewAPI(mockService, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger).RegisterEndpoints(mux)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}

			if tt.validateResp != nil {
				tt.validateResp(t, rr)
			}
		})
	}
}
