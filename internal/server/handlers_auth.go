// Copyright 2026 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"

	"github.com/ideabase/dbgateway/internal/apperr"
)

type logonRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createAccountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type apiKeyRequest struct {
	Email string `json:"email"`
}

// handleLogon serves POST /auth/logon.json.
func (h *handlers) handleLogon(w http.ResponseWriter, r *http.Request) {
	var req logonRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, apperr.BadRequest("email and password are required"))
		return
	}
	token, err := h.deps.Auth.Logon(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"token": token})
}

// handleCreateAccount serves POST /auth/account.json.
func (h *handlers) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, apperr.BadRequest("email and password are required"))
		return
	}
	if err := h.deps.Auth.CreateAccount(r.Context(), req.Email, req.Password, req.Role); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"email": req.Email})
}

// handleIssueAPIKey serves POST /auth/account/api-key.json.
func (h *handlers) handleIssueAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Email == "" {
		writeError(w, r, apperr.BadRequest("email is required"))
		return
	}
	key, err := h.deps.Auth.IssueAPIKey(r.Context(), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"api_key": key})
}
