package handler

import (
	"go-property-api/common"
	"go-property-api/model"
	"go-property-api/service"
	"net/http"
	"net/url"
	"strings"
)

type PropertyHandler struct {
	properties *service.PropertyService
	tempDir    string
}

func NewPropertyHandler(properties *service.PropertyService, tempDir string) *PropertyHandler {
	return &PropertyHandler{properties: properties, tempDir: tempDir}
}

// listParams reads page, limit, sortBy, order and filters[field] from the query string.
func listParams(q url.Values) service.ListParams {
	p := service.ListParams{
		Page:    q.Get("page"),
		Limit:   q.Get("limit"),
		SortBy:  q.Get("sortBy"),
		Order:   q.Get("order"),
		Filters: map[string]string{},
	}
	for key, values := range q {
		name, ok := strings.CutPrefix(key, "filters[")
		if !ok || !strings.HasSuffix(name, "]") || len(values) == 0 {
			continue
		}
		p.Filters[strings.TrimSuffix(name, "]")] = values[0]
	}
	return p
}

// Create godoc
// @Summary      List a new property
// @Tags         properties
// @Accept       mpfd
// @Produce      json
// @Param        title         formData  string  true   "Title"
// @Param        address       formData  string  true   "Address"
// @Param        propertyType  formData  string  true   "Meeting Room, Private Office Room or Desk"
// @Param        area          formData  number  true   "Area"
// @Param        tags          formData  string  true   "Comma separated tags"
// @Param        hasParking    formData  bool    false  "Parking available"
// @Param        isAccessible  formData  bool    false  "Accessible"
// @Param        isAvailable   formData  bool    false  "Available now"
// @Param        capacity      formData  integer true   "Capacity"
// @Param        leaseTerm     formData  string  true   "Hourly, Daily, Weekly, Monthly or Yearly"
// @Param        price         formData  number  true   "Price"
// @Param        images        formData  file    false  "Up to 5 images"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/properties/ [post]
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	paths, appErr := receiveFiles(w, r, "images", service.MaxImagesPerRequest, h.tempDir)
	defer cleanupUpload(r, paths)
	if appErr != nil {
		return appErr
	}

	var req model.PropertyRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	property, err := h.properties.Create(r.Context(), user.ID, req, paths)
	if err != nil {
		return serviceError(err, "Something went wrong while creating the property")
	}

	common.SendJSON(w, http.StatusOK, "Property created successfully", property)
	return nil
}

// View godoc
// @Summary      View a property
// @Tags         properties
// @Produce      json
// @Param        id   path  string  true  "Property ID"
// @Success      200  {object}  common.APIResponse
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/properties/view/{id} [post]
func (h *PropertyHandler) View(w http.ResponseWriter, r *http.Request) *common.AppError {
	property, err := h.properties.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return serviceError(err, "Something went wrong while fetching the property")
	}
	common.SendJSON(w, http.StatusOK, "Property fetched successfully", property)
	return nil
}

// Edit godoc
// @Summary      Edit a property
// @Description  Replaces the fields that are sent and appends any uploaded images. Owner only.
// @Tags         properties
// @Accept       mpfd
// @Produce      json
// @Param        id      path      string  true   "Property ID"
// @Param        images  formData  file    false  "Up to 5 images"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/properties/edit/{id} [patch]
func (h *PropertyHandler) Edit(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	paths, appErr := receiveFiles(w, r, "images", service.MaxImagesPerRequest, h.tempDir)
	defer cleanupUpload(r, paths)
	if appErr != nil {
		return appErr
	}

	var req model.EditPropertyRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	property, err := h.properties.Edit(r.Context(), user.ID, r.PathValue("id"), req, paths)
	if err != nil {
		return serviceError(err, "Something went wrong while updating the property")
	}

	common.SendJSON(w, http.StatusOK, "Property updated successfully", property)
	return nil
}

// DeleteImage godoc
// @Summary      Remove an image from a property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Param        id     path  string                    true  "Property ID"
// @Param        image  body  model.RemoveImageRequest  true  "Image URL to remove"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/properties/edit/{id}/images [delete]
func (h *PropertyHandler) DeleteImage(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	var req model.RemoveImageRequest
	if appErr := common.ValidateAndDecode(w, r, &req); appErr != nil {
		return appErr
	}

	property, err := h.properties.RemoveImage(r.Context(), user.ID, r.PathValue("id"), req.ImageURL)
	if err != nil {
		return serviceError(err, "Something went wrong while removing the image")
	}

	common.SendJSON(w, http.StatusOK, "Image removed successfully", property)
	return nil
}

// Delete godoc
// @Summary      Delete a property
// @Tags         properties
// @Produce      json
// @Param        id   path  string  true  "Property ID"
// @Success      200  {object}  common.APIResponse
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/properties/{id} [delete]
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	if err := h.properties.Delete(r.Context(), user.ID, r.PathValue("id")); err != nil {
		return serviceError(err, "Something went wrong while deleting the property")
	}

	common.SendJSON(w, http.StatusOK, "Property deleted successfully", nil)
	return nil
}

// AllProperties godoc
// @Summary      List properties
// @Tags         properties
// @Produce      json
// @Param        page     query  int     false  "Page, starting at 1"
// @Param        limit    query  int     false  "Page size, at most 100"
// @Param        sortBy   query  string  false  "Sort field"
// @Param        order    query  string  false  "asc or desc"
// @Success      200  {object}  common.APIResponse
// @Failure      400  {object}  common.AppError
// @Router       /api/properties/all-properties [get]
func (h *PropertyHandler) AllProperties(w http.ResponseWriter, r *http.Request) *common.AppError {
	page, err := h.properties.List(r.Context(), listParams(r.URL.Query()))
	if err != nil {
		return serviceError(err, "Something went wrong while listing properties")
	}
	common.SendJSON(w, http.StatusOK, "Properties fetched successfully", page)
	return nil
}

// MyProperties godoc
// @Summary      List the caller's properties
// @Tags         properties
// @Produce      json
// @Param        page     query  int     false  "Page, starting at 1"
// @Param        limit    query  int     false  "Page size, at most 100"
// @Param        sortBy   query  string  false  "Sort field"
// @Param        order    query  string  false  "asc or desc"
// @Success      200  {object}  common.APIResponse
// @Failure      401  {object}  common.AppError
// @Security     BearerAuth
// @Router       /api/properties/my-properties [post]
func (h *PropertyHandler) MyProperties(w http.ResponseWriter, r *http.Request) *common.AppError {
	user, appErr := currentUser(r)
	if appErr != nil {
		return appErr
	}

	page, err := h.properties.ListForOwner(r.Context(), user.ID, listParams(r.URL.Query()))
	if err != nil {
		return serviceError(err, "Something went wrong while listing properties")
	}
	common.SendJSON(w, http.StatusOK, "Properties fetched successfully", page)
	return nil
}
