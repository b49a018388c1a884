package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricepoint/go-admin-console/backend"
)

func TestListUsersPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "3", r.URL.Query().Get("page"))
		require.Equal(t, "25", r.URL.Query().Get("pageSize"))
		w.Write([]byte(`{"data":{"items":[{"id":"u1","name":"Jane","email":"jane@example.com","role":"ADMIN"}],"page":3,"pageSize":25,"total":51,"totalPages":3}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	page, err := client.ListUsers(context.Background(), backend.ListParams{Page: 3, PageSize: 25})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	require.Equal(t, "u1", page.Items[0].ID)
	require.Equal(t, backend.RoleAdmin, page.Items[0].Role)
	require.Equal(t, 51, page.Total)
	require.Equal(t, 3, page.TotalPages)
}

func TestListParamsDefaults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("pageSize"))
		w.Write([]byte(`{"data":{"items":[],"page":1,"pageSize":10,"total":0,"totalPages":0}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	_, err := client.ListUsers(context.Background(), backend.ListParams{})
	require.NoError(t, err)
}

func TestListProductsSkipsPriceAnnotation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/product", r.URL.Path)
		require.Equal(t, "false", r.URL.Query().Get("priceFiltering"))
		w.Write([]byte(`{"data":{"items":[{"id":"p1","name":"Rice","unit":"KG"}],"page":1,"pageSize":10,"total":1,"totalPages":1}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	page, err := client.ListProducts(context.Background(), backend.ListParams{})
	require.NoError(t, err)
	require.Equal(t, backend.UnitKilogram, page.Items[0].Unit)
}

func TestListPricesIncludesDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/price", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("includeDetails"))
		w.Write([]byte(`{"data":{"items":[{"id":"pr1","value":9.99,"type":"DEAL","isProductWithNearExpirationDate":true}],"page":1,"pageSize":10,"total":1,"totalPages":1}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	page, err := client.ListPrices(context.Background(), backend.ListParams{})
	require.NoError(t, err)
	require.Equal(t, backend.PriceDeal, page.Items[0].Type)
	require.True(t, page.Items[0].IsProductWithNearExpirationDate)
}

func TestGetPriceIncludesRelationships(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/price/pr1", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("includeDetails"))
		w.Write([]byte(`{"data":{"id":"pr1","value":5.49,"type":"COMMON","isProductWithNearExpirationDate":false,"user":{"id":"u1","name":"Jane","email":"jane@example.com","role":"ADMIN"},"product":{"id":"p1","name":"Rice","unit":"KG"},"establishment":{"id":"e1","name":"Central Market","latitude":-23.55,"longitude":-46.63}}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	price, err := client.GetPrice(context.Background(), "pr1")
	require.NoError(t, err)

	require.Equal(t, 5.49, price.Value)
	require.NotNil(t, price.User)
	require.Equal(t, "Jane", price.User.Name)
	require.NotNil(t, price.Product)
	require.Equal(t, backend.UnitKilogram, price.Product.Unit)
	require.NotNil(t, price.Establishment)
	require.Equal(t, "Central Market", price.Establishment.Name)
}

func TestCreatePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/price", r.URL.Path)

		var form backend.PriceForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		require.Equal(t, "u1", form.UserID)
		require.Equal(t, "p1", form.ProductID)
		require.Equal(t, "e1", form.EstablishmentID)
		require.Equal(t, 9.99, form.Value)
		require.Equal(t, backend.PriceDeal, form.Type)
		require.NotNil(t, form.ExpiresAt)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"pr2","value":9.99,"type":"DEAL","isProductWithNearExpirationDate":false}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	expiresAt := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	price, err := client.CreatePrice(context.Background(), backend.PriceForm{
		UserID:          "u1",
		ProductID:       "p1",
		EstablishmentID: "e1",
		Value:           9.99,
		Type:            backend.PriceDeal,
		ExpiresAt:       &expiresAt,
	})
	require.NoError(t, err)
	require.Equal(t, "pr2", price.ID)
}

func TestUpdatePrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/price/pr1", r.URL.Path)

		var form backend.PriceForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		require.Equal(t, 4.25, form.Value)

		w.Write([]byte(`{"data":{"id":"pr1","value":4.25,"type":"COMMON","isProductWithNearExpirationDate":true}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	price, err := client.UpdatePrice(context.Background(), "pr1", backend.PriceForm{
		UserID:                          "u1",
		ProductID:                       "p1",
		EstablishmentID:                 "e1",
		Value:                           4.25,
		Type:                            backend.PriceCommon,
		IsProductWithNearExpirationDate: true,
	})
	require.NoError(t, err)
	require.True(t, price.IsProductWithNearExpirationDate)
}

func TestGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/user/u1", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"u1","name":"Jane","email":"jane@example.com","role":"ADMIN"}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	user, err := client.GetUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Jane", user.Name)
}

func TestGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/product/p1", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"p1","name":"Rice","unit":"KG","lowestPrice":4.2,"lowestPriceEstablishment":"Central Market"}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	product, err := client.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, backend.UnitKilogram, product.Unit)
	require.NotNil(t, product.LowestPrice)
	require.Equal(t, 4.2, *product.LowestPrice)
}

func TestGetEstablishment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/establishment/e1", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"e1","name":"Central Market","latitude":-23.55,"longitude":-46.63,"businessesHours":[{"day":"SAT"}]}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	establishment, err := client.GetEstablishment(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, establishment.BusinessHours, 1)
	require.Equal(t, backend.DaySaturday, establishment.BusinessHours[0].Day)
}

func TestDashboardTotals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/dashboard/count", r.URL.Path)
		require.Equal(t, "2026-01-01", r.URL.Query().Get("fromDate"))
		require.Equal(t, "2026-01-31", r.URL.Query().Get("toDate"))
		w.Write([]byte(`{"data":{"users":12,"products":40,"establishments":7,"prices":310}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	totals, err := client.Totals(context.Background(), from, to)
	require.NoError(t, err)
	require.Equal(t, &backend.DashboardTotals{Users: 12, Products: 40, Establishments: 7, Prices: 310}, totals)
}

func TestCreateUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var form backend.UserForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		require.Equal(t, "John Doe", form.Name)
		require.Equal(t, backend.RoleConsumer, form.Role)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"u2","name":"John Doe","email":"john@example.com","role":"CONSUMER"}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	user, err := client.CreateUser(context.Background(), backend.UserForm{
		Name:  "John Doe",
		Email: "john@example.com",
		Role:  backend.RoleConsumer,
	})
	require.NoError(t, err)
	require.Equal(t, "u2", user.ID)
}

func TestDeleteEstablishment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/establishment/e1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	require.NoError(t, client.DeleteEstablishment(context.Background(), "e1"))
}

func TestEnvelopeWithoutData(t *testing.T) {
	for name, body := range map[string]string{
		"missing": `{}`,
		"null":    `{"data":null}`,
	} {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			client := backend.NewClient(server.URL)
			_, err := client.ListUsers(context.Background(), backend.ListParams{})
			require.ErrorContains(t, err, "response envelope has no data")
		})
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"name":"NotFoundException","message":"user not found"}}`))
	}))
	defer server.Close()

	client := backend.NewClient(server.URL)
	_, err := client.ListUsers(context.Background(), backend.ListParams{})
	require.Error(t, err)

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "NotFoundException", apiErr.Name)
	require.Equal(t, "user not found", apiErr.Message)
}

func TestResolveIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/me", r.URL.Path)
		require.Equal(t, "Bearer candidate-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"id":"u1","name":"Jane","email":"jane@example.com","role":"ADMIN"}}`))
	}))
	defer server.Close()

	resolver := backend.NewIdentityClient(server.URL)
	user, err := resolver.ResolveIdentity(context.Background(), "candidate-token")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, backend.RoleAdmin, user.Role)
}
