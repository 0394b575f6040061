package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for token and account operations
type IAuthService interface {
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// IRecipeService defines the interface for recipe reads and writes
type IRecipeService interface {
	List(ctx context.Context, viewer *uuid.UUID, params types.ListParams) (types.Page[types.RecipeResponse], error)
	ListFavourites(ctx context.Context, viewer uuid.UUID, params types.ListParams) (types.Page[types.RecipeResponse], error)
	ListByAuthor(ctx context.Context, viewer *uuid.UUID, authorID uuid.UUID, params types.ListParams) (types.Page[types.RecipeResponse], error)
	ListCart(ctx context.Context, owner uuid.UUID, page int) (types.Page[types.RecipeResponse], error)
	Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*types.RecipeResponse, error)
	Create(ctx context.Context, author uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error)
	Update(ctx context.Context, id, editor uuid.UUID, req *types.RecipeRequest) (*types.RecipeResponse, error)
	Delete(ctx context.Context, id, editor uuid.UUID) error
	CheckAuthor(ctx context.Context, id, editor uuid.UUID) error
	SetImage(ctx context.Context, id, editor uuid.UUID, imageURL string) (*types.RecipeResponse, error)
}

// ITagService defines the interface for tag lookups
type ITagService interface {
	List(ctx context.Context) ([]models.Tag, error)
	SeedTags(ctx context.Context) error
}

// IIngredientService defines the interface for the ingredient catalogue
type IIngredientService interface {
	Search(ctx context.Context, query string) ([]models.Ingredient, error)
	LoadCSV(ctx context.Context, r io.Reader) (LoadResult, error)
}

// IFavouriteService defines the interface for favourite toggles
type IFavouriteService interface {
	Add(ctx context.Context, userID, recipeID uuid.UUID) error
	Remove(ctx context.Context, userID, recipeID uuid.UUID) (bool, error)
}

// IFollowService defines the interface for subscriptions
type IFollowService interface {
	Follow(ctx context.Context, userID, authorID uuid.UUID) error
	Unfollow(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error)
	ListSubscriptions(ctx context.Context, userID uuid.UUID, page int) (types.Page[types.SubscriptionResponse], error)
}

// ICartService defines the interface for the shopping cart
type ICartService interface {
	GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)
	Add(ctx context.Context, ownerID, recipeID uuid.UUID) error
	Remove(ctx context.Context, ownerID, recipeID uuid.UUID) (bool, error)
	Count(ctx context.Context, ownerID uuid.UUID) (int64, error)
	PurchaseList(ctx context.Context, ownerID uuid.UUID) ([]PurchaseItem, error)
}

// IImageService defines the interface for recipe picture storage
type IImageService interface {
	Enabled() bool
	UploadRecipeImage(ctx context.Context, data []byte) (string, error)
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IRecipeService     = (*RecipeService)(nil)
	_ ITagService        = (*TagService)(nil)
	_ IIngredientService = (*IngredientService)(nil)
	_ IFavouriteService  = (*FavouriteService)(nil)
	_ IFollowService     = (*FollowService)(nil)
	_ ICartService       = (*CartService)(nil)
	_ IImageService      = (*ImageService)(nil)
)
