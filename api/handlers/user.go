package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/referloop/referral-api/api"
	"github.com/referloop/referral-api/config"
	"github.com/referloop/referral-api/databases"
	"github.com/referloop/referral-api/models"
)

var validate = validator.New()

// User exported for testing purposes
type User struct {
	DB databases.UserDatabase
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=business referrer customer"`

	BusinessName string `json:"businessName" validate:"required_if=Role business"`
	Website      string `json:"website" validate:"omitempty,url"`
	Company      string `json:"company"`
	ReferredBy   string `json:"referredBy"`
}

// writeValidationErrors returns a 400 with one entry per failed field rule
func writeValidationErrors(w http.ResponseWriter, err error) {
	var fieldErrors []models.FieldError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, models.FieldError{
				Field: strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				Rule:  fe.Tag(),
			})
		}
	}
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(models.ValidationErrorResponse{
		Message: "validation failed",
		Errors:  fieldErrors,
	})
}

// UserCreateHandler registers a new account. Role is fixed at creation time and
// determines which optional fields are honored.
func (u User) UserCreateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to hash password", http.StatusInternalServerError, w, err)
		return
	}

	now := time.Now()
	newUser := models.User{
		ID:        primitive.NewObjectID(),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hash),
		Name:      req.Name,
		Role:      req.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	switch req.Role {
	case models.RoleBusiness:
		newUser.BusinessName = req.BusinessName
		newUser.Website = req.Website
	case models.RoleReferrer:
		newUser.Company = req.Company
		newUser.ReferralCode = newReferralCode()
		if businessID := u.matchBusiness(ctx, req.Company); businessID != nil {
			newUser.BusinessID = businessID
		}
	case models.RoleCustomer:
		newUser.ReferredBy = req.ReferredBy
	}

	_, err = u.DB.InsertOne(ctx, newUser)
	if err != nil {
		if databases.IsDuplicateKey(err) {
			config.ErrorStatus("email already registered", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create user", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User created successfully",
		"id":      newUser.ID.Hex(),
		"role":    newUser.Role,
	})
}

// matchBusiness resolves a referrer's free-text company name to a business
// account: case-insensitive exact match first, then prefix. Best effort only;
// an unmatched company leaves businessId unset.
func (u User) matchBusiness(ctx context.Context, company string) *primitive.ObjectID {
	company = strings.TrimSpace(company)
	if company == "" {
		return nil
	}

	exact, err := u.DB.FindOne(ctx, bson.M{
		"role":         models.RoleBusiness,
		"businessName": bson.M{"$regex": "^" + regexQuote(company) + "$", "$options": "i"},
	})
	if err == nil {
		return &exact.ID
	}

	prefix, err := u.DB.FindOne(ctx, bson.M{
		"role":         models.RoleBusiness,
		"businessName": bson.M{"$regex": "^" + regexQuote(company), "$options": "i"},
	})
	if err == nil {
		return &prefix.ID
	}
	return nil
}

// regexQuote escapes regex metacharacters in user-supplied match text
func regexQuote(s string) string {
	special := `\.+*?()|[]{}^$`
	var b strings.Builder
	for _, c := range s {
		if strings.ContainsRune(special, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

type checkUserRequest struct {
	Email string `json:"email"`
}

// UserCheckEmailHandler reports whether an email is already registered
func (u User) UserCheckEmailHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req checkUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		config.ErrorStatus("email is required", http.StatusBadRequest, w, nil)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	count, err := u.DB.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		config.ErrorStatus("failed to check email", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"exists": count > 0})
}

// MeHandler returns the session user's profile
func (u User) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := api.PrincipalObjectID(r.Context())
	if err != nil {
		config.ErrorStatus("failed to resolve session user", http.StatusUnauthorized, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := u.DB.FindOne(ctx, bson.M{"_id": userID})
	if err != nil {
		config.ErrorStatus("failed to get user by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
