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
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"

	"github.com/ideabase/dbgateway/internal/apperr"
)

// writeJSON renders v as the raw response payload on success (§6's
// envelope: no wrapping object on success).
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeError renders {"err_msg": <message>} at the status apperr.StatusOf
// maps err's Kind to.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusOf(err)
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"err_msg": err.Error()})
}

// decodeBody decodes the request body into v, returning a BadRequest error
// on malformed JSON.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.BadRequest("malformed request body: %v", err)
	}
	return nil
}
