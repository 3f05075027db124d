package service

import (
	"context"
	"errors"
	"fmt"
	"go-property-api/logger"
	"go-property-api/media"
	"go-property-api/model"
	"go-property-api/repository"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrImageNotFound    = errors.New("image not found on this property")
	ErrNotOwner         = errors.New("you are not the owner of this property")
)

const (
	MaxImagesPerRequest = 5
	defaultPage         = 1
	defaultLimit        = 10
	maxLimit            = 100
	defaultSortBy       = "createdAt"
)

// PropertyService implements the property catalog.
type PropertyService struct {
	repo     repository.IPropertyRepository
	uploader media.Uploader
}

func NewPropertyService(repo repository.IPropertyRepository, uploader media.Uploader) *PropertyService {
	return &PropertyService{repo: repo, uploader: uploader}
}

func splitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func parsePropertyID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, newValidationError("Invalid property id", "id")
	}
	return oid, nil
}

func validPropertyType(v string) bool {
	switch model.PropertyType(v) {
	case model.PropertyMeetingRoom, model.PropertyPrivateOffice, model.PropertyDesk:
		return true
	}
	return false
}

func validLeaseTerm(v string) bool {
	switch model.LeaseTerm(v) {
	case model.LeaseHourly, model.LeaseDaily, model.LeaseWeekly, model.LeaseMonthly, model.LeaseYearly:
		return true
	}
	return false
}

func parseNonNegativeFloat(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0, newValidationError(name+" must be a non-negative number", name)
	}
	return v, nil
}

func parseCapacity(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return 0, newValidationError("capacity must be a positive whole number", "capacity")
	}
	return v, nil
}

func (s *PropertyService) uploadImages(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) > MaxImagesPerRequest {
		return nil, newValidationError(fmt.Sprintf("At most %d images per request", MaxImagesPerRequest), "images")
	}
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		url, err := s.uploader.Upload(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("could not upload image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Create lists a new property owned by ownerID.
func (s *PropertyService) Create(ctx context.Context, ownerID primitive.ObjectID, req model.PropertyRequest, imagePaths []string) (*model.Property, error) {
	if missing := missingFields(
		field{"title", req.Title},
		field{"address", req.Address},
		field{"propertyType", req.PropertyType},
		field{"area", req.Area},
		field{"tags", req.Tags},
		field{"capacity", req.Capacity},
		field{"leaseTerm", req.LeaseTerm},
		field{"price", req.Price},
	); len(missing) > 0 {
		return nil, newValidationError("All fields are required", missing...)
	}
	if !validPropertyType(req.PropertyType) {
		return nil, newValidationError("Unknown property type", "propertyType")
	}
	if !validLeaseTerm(req.LeaseTerm) {
		return nil, newValidationError("Unknown lease term", "leaseTerm")
	}
	area, err := parseNonNegativeFloat("area", req.Area)
	if err != nil {
		return nil, err
	}
	price, err := parseNonNegativeFloat("price", req.Price)
	if err != nil {
		return nil, err
	}
	capacity, err := parseCapacity(req.Capacity)
	if err != nil {
		return nil, err
	}

	images, err := s.uploadImages(ctx, imagePaths)
	if err != nil {
		return nil, err
	}

	property := &model.Property{
		Owner:        ownerID,
		Title:        strings.TrimSpace(req.Title),
		Address:      strings.TrimSpace(req.Address),
		PropertyType: model.PropertyType(req.PropertyType),
		Area:         area,
		Tags:         splitTags(req.Tags),
		Images:       images,
		HasParking:   req.HasParking,
		IsAccessible: req.IsAccessible,
		IsAvailable:  req.IsAvailable,
		Price:        price,
		Capacity:     capacity,
		LeaseTerm:    model.LeaseTerm(req.LeaseTerm),
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"owner":       ownerID.Hex(),
		"property_id": property.ID.Hex(),
		"images":      len(images),
	}).Info("Property created")
	return property, nil
}

func (s *PropertyService) Get(ctx context.Context, id string) (*model.Property, error) {
	oid, err := parsePropertyID(id)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, oid)
}

func (s *PropertyService) find(ctx context.Context, id primitive.ObjectID) (*model.Property, error) {
	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return property, nil
}

// findOwned loads the property and checks callerID owns it.
func (s *PropertyService) findOwned(ctx context.Context, callerID primitive.ObjectID, id string) (*model.Property, error) {
	oid, err := parsePropertyID(id)
	if err != nil {
		return nil, err
	}
	property, err := s.find(ctx, oid)
	if err != nil {
		return nil, err
	}
	if property.Owner != callerID {
		logger.Log.WithFields(logrus.Fields{
			"caller":      callerID.Hex(),
			"property_id": oid.Hex(),
		}).Warn("Permission denied for property change")
		return nil, ErrNotOwner
	}
	return property, nil
}

func toPatch(req model.EditPropertyRequest) (model.PropertyPatch, error) {
	var patch model.PropertyPatch
	if v := strings.TrimSpace(req.Title); v != "" {
		patch.Title = &v
	}
	if v := strings.TrimSpace(req.Address); v != "" {
		patch.Address = &v
	}
	if req.PropertyType != "" {
		if !validPropertyType(req.PropertyType) {
			return patch, newValidationError("Unknown property type", "propertyType")
		}
		pt := model.PropertyType(req.PropertyType)
		patch.PropertyType = &pt
	}
	if req.Area != "" {
		area, err := parseNonNegativeFloat("area", req.Area)
		if err != nil {
			return patch, err
		}
		patch.Area = &area
	}
	if req.Price != "" {
		price, err := parseNonNegativeFloat("price", req.Price)
		if err != nil {
			return patch, err
		}
		patch.Price = &price
	}
	if req.Capacity != "" {
		capacity, err := parseCapacity(req.Capacity)
		if err != nil {
			return patch, err
		}
		patch.Capacity = &capacity
	}
	if req.LeaseTerm != "" {
		if !validLeaseTerm(req.LeaseTerm) {
			return patch, newValidationError("Unknown lease term", "leaseTerm")
		}
		lt := model.LeaseTerm(req.LeaseTerm)
		patch.LeaseTerm = &lt
	}
	if strings.TrimSpace(req.Tags) != "" {
		patch.Tags = splitTags(req.Tags)
	}
	patch.HasParking = req.HasParking
	patch.IsAccessible = req.IsAccessible
	patch.IsAvailable = req.IsAvailable
	return patch, nil
}

// Edit replaces the provided fields and appends newly uploaded images. Only the owner may edit.
func (s *PropertyService) Edit(ctx context.Context, callerID primitive.ObjectID, id string, req model.EditPropertyRequest, imagePaths []string) (*model.Property, error) {
	property, err := s.findOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	patch, err := toPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.NewImages, err = s.uploadImages(ctx, imagePaths); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, property.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	logger.Log.WithField("property_id", property.ID.Hex()).Info("Property updated")
	return updated, nil
}

func (s *PropertyService) Delete(ctx context.Context, callerID primitive.ObjectID, id string) error {
	property, err := s.findOwned(ctx, callerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, property.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}
	logger.Log.WithField("property_id", property.ID.Hex()).Info("Property deleted")
	return nil
}

// RemoveImage drops imageURL from the property's image list. The hosted file itself is left alone.
func (s *PropertyService) RemoveImage(ctx context.Context, callerID primitive.ObjectID, id, imageURL string) (*model.Property, error) {
	property, err := s.findOwned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, newValidationError("imageUrl is required", "imageUrl")
	}

	listed := false
	for _, img := range property.Images {
		if img == imageURL {
			listed = true
			break
		}
	}
	if !listed {
		return nil, ErrImageNotFound
	}

	updated, err := s.repo.PullImage(ctx, property.ID, imageURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return updated, nil
}

// ListParams are the raw listing parameters taken from a query string.
type ListParams struct {
	Page    string
	Limit   string
	SortBy  string
	Order   string
	Filters map[string]string
}

type filterKind int

const (
	filterString filterKind = iota
	filterNumber
	filterInt
	filterBool
	filterObjectID
)

// filterable maps each property field a listing may filter on to the type its value is coerced to.
var filterable = map[string]filterKind{
	"title":        filterString,
	"address":      filterString,
	"propertyType": filterString,
	"leaseTerm":    filterString,
	"tags":         filterString,
	"area":         filterNumber,
	"price":        filterNumber,
	"capacity":     filterInt,
	"hasParking":   filterBool,
	"isAccessible": filterBool,
	"isAvailable":  filterBool,
	"owner":        filterObjectID,
}

var sortable = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"price":     true,
	"area":      true,
	"capacity":  true,
	"title":     true,
}

func coerceFilter(name, raw string) (interface{}, error) {
	kind, ok := filterable[name]
	if !ok {
		return nil, newValidationError("Unsupported filter", name)
	}
	raw = strings.TrimSpace(raw)
	invalid := newValidationError("Invalid filter value", name)
	switch kind {
	case filterNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid
		}
		return v, nil
	case filterInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid
		}
		return v, nil
	case filterBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid
		}
		return v, nil
	case filterObjectID:
		v, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, invalid
		}
		return v, nil
	}
	return raw, nil
}

func parsePositive(name, raw string, def int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 1 {
		return 0, newValidationError(name+" must be a positive whole number", name)
	}
	return v, nil
}

// BuildListQuery validates raw listing parameters and applies the defaults.
func BuildListQuery(p ListParams) (model.ListQuery, error) {
	q := model.ListQuery{Filters: map[string]interface{}{}}

	var err error
	if q.Page, err = parsePositive("page", p.Page, defaultPage); err != nil {
		return q, err
	}
	if q.Limit, err = parsePositive("limit", p.Limit, defaultLimit); err != nil {
		return q, err
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	// (page-1)*limit must fit in an int64 skip
	if q.Page-1 > math.MaxInt64/q.Limit {
		return q, newValidationError("page is out of range", "page")
	}

	q.SortBy = strings.TrimSpace(p.SortBy)
	if q.SortBy == "" {
		q.SortBy = defaultSortBy
	}
	if !sortable[q.SortBy] {
		return q, newValidationError("Unsupported sort field", "sortBy")
	}

	switch strings.ToLower(strings.TrimSpace(p.Order)) {
	case "", "desc":
		q.Desc = true
	case "asc":
		q.Desc = false
	default:
		return q, newValidationError("order must be asc or desc", "order")
	}

	for name, raw := range p.Filters {
		v, err := coerceFilter(name, raw)
		if err != nil {
			return q, err
		}
		q.Filters[name] = v
	}
	return q, nil
}

func (s *PropertyService) list(ctx context.Context, q model.ListQuery) (*model.PropertyPage, error) {
	properties, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return &model.PropertyPage{
		Properties: properties,
		Page:       q.Page,
		TotalPages: (total + q.Limit - 1) / q.Limit,
		Total:      total,
	}, nil
}

// List returns one page of all properties.
func (s *PropertyService) List(ctx context.Context, p ListParams) (*model.PropertyPage, error) {
	q, err := BuildListQuery(p)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, q)
}

// ListForOwner returns one page of the properties owned by ownerID.
func (s *PropertyService) ListForOwner(ctx context.Context, ownerID primitive.ObjectID, p ListParams) (*model.PropertyPage, error) {
	q, err := BuildListQuery(p)
	if err != nil {
		return nil, err
	}
	q.Filters["owner"] = ownerID
	return s.list(ctx, q)
}
