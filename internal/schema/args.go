package schema

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nlstn/go-storefront/internal/repository"
)

// Argument decoding. graphql-go has already coerced every value to the
// declared scalar type, so the checks below only guard against shapes the
// schema cannot express.

func stringArg(args map[string]interface{}, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrValidation, name)
	}
	return s, nil
}

func optionalString(args map[string]interface{}, name string) (*string, error) {
	if v, ok := args[name]; !ok || v == nil {
		return nil, nil
	}
	s, err := stringArg(args, name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func intArg(args map[string]interface{}, name string) (int64, error) {
	switch v := args[name].(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrValidation, name)
	}
}

func optionalInt(args map[string]interface{}, name string) (*int64, error) {
	if v, ok := args[name]; !ok || v == nil {
		return nil, nil
	}
	n, err := intArg(args, name)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func optionalBool(args map[string]interface{}, name string) (*bool, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a boolean", ErrValidation, name)
	}
	return &b, nil
}

func optionalAmount(args map[string]interface{}, name string) (*decimal.Decimal, error) {
	var d decimal.Decimal
	switch v := args[name].(type) {
	case nil:
		return nil, nil
	case float64:
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	default:
		return nil, fmt.Errorf("%w: %s must be a number", ErrValidation, name)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s must not be negative", ErrValidation, name)
	}
	d = d.Round(2)
	return &d, nil
}

func objectList(args map[string]interface{}, name string) ([]map[string]interface{}, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrValidation, name)
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be an object", ErrValidation, name, i)
		}
		out = append(out, m)
	}
	return out, nil
}

// stringList returns nil when the argument is absent and a non-nil slice,
// possibly empty, when it is present.
func stringList(args map[string]interface{}, name string) ([]string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list", ErrValidation, name)
	}
	out := make([]string, 0, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] must be a string", ErrValidation, name, i)
		}
		out = append(out, s)
	}
	return out, nil
}

func attributeSetsArg(args map[string]interface{}) ([]repository.AttributeSetInput, error) {
	sets, err := objectList(args, "attributes")
	if err != nil {
		return nil, err
	}
	out := make([]repository.AttributeSetInput, 0, len(sets))
	for _, set := range sets {
		in := repository.AttributeSetInput{}
		if in.Name, err = stringArg(set, "name"); err != nil {
			return nil, err
		}
		if in.Type, err = stringArg(set, "type"); err != nil {
			return nil, err
		}
		items, err := objectList(set, "items")
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			value, err := stringArg(item, "value")
			if err != nil {
				return nil, err
			}
			display, err := stringArg(item, "displayValue")
			if err != nil {
				return nil, err
			}
			in.Items = append(in.Items, repository.AttributeItemInput{Value: value, DisplayValue: display})
		}
		out = append(out, in)
	}
	return out, nil
}

func productInputArg(input map[string]interface{}) (repository.ProductInput, error) {
	patch, err := productPatchArg(input)
	if err != nil {
		return repository.ProductInput{}, err
	}
	in := repository.ProductInput{
		CategoryID: patch.CategoryID,
		Gallery:    patch.Gallery,
		Attributes: patch.Attributes,
	}
	deref(&in.Name, patch.Name)
	deref(&in.Description, patch.Description)
	deref(&in.Brand, patch.Brand)
	deref(&in.CategoryName, patch.CategoryName)
	deref(&in.InStock, patch.InStock)
	deref(&in.Price, patch.Price)
	return in, nil
}

func productPatchArg(input map[string]interface{}) (repository.ProductPatch, error) {
	var (
		patch repository.ProductPatch
		err   error
	)
	if patch.Name, err = optionalString(input, "name"); err != nil {
		return patch, err
	}
	if patch.Description, err = optionalString(input, "description"); err != nil {
		return patch, err
	}
	if patch.Brand, err = optionalString(input, "brand"); err != nil {
		return patch, err
	}
	if patch.CategoryID, err = optionalInt(input, "category_id"); err != nil {
		return patch, err
	}
	if patch.CategoryName, err = optionalString(input, "category"); err != nil {
		return patch, err
	}
	if patch.InStock, err = optionalBool(input, "in_stock"); err != nil {
		return patch, err
	}
	if patch.Price, err = optionalAmount(input, "price"); err != nil {
		return patch, err
	}
	if patch.Gallery, err = stringList(input, "gallery"); err != nil {
		return patch, err
	}
	if patch.Attributes, err = attributeSetsArg(input); err != nil {
		return patch, err
	}
	return patch, nil
}

func orderItemsArg(args map[string]interface{}) ([]repository.OrderItemInput, error) {
	items, err := objectList(args, "items")
	if err != nil {
		return nil, err
	}
	out := make([]repository.OrderItemInput, 0, len(items))
	for _, item := range items {
		in := repository.OrderItemInput{}
		if in.ProductID, err = stringArg(item, "product_id"); err != nil {
			return nil, err
		}
		quantity, err := intArg(item, "quantity")
		if err != nil {
			return nil, err
		}
		in.Quantity = int(quantity)
		selected, err := objectList(item, "selected_attributes")
		if err != nil {
			return nil, err
		}
		for _, sa := range selected {
			name, err := stringArg(sa, "name")
			if err != nil {
				return nil, err
			}
			attributeID, err := intArg(sa, "attribute_id")
			if err != nil {
				return nil, err
			}
			in.SelectedAttributes = append(in.SelectedAttributes, repository.SelectedAttributeInput{
				Name:        name,
				AttributeID: attributeID,
			})
		}
		out = append(out, in)
	}
	return out, nil
}

func orderInputArg(args map[string]interface{}) (repository.OrderInput, error) {
	var (
		in  repository.OrderInput
		err error
	)
	if in.CustomerName, err = stringArg(args, "customer_name"); err != nil {
		return in, err
	}
	if in.CustomerEmail, err = stringArg(args, "customer_email"); err != nil {
		return in, err
	}
	if in.Items, err = orderItemsArg(args); err != nil {
		return in, err
	}
	return in, nil
}

func orderPatchArg(args map[string]interface{}) (repository.OrderPatch, error) {
	var (
		patch repository.OrderPatch
		err   error
	)
	if patch.CustomerName, err = optionalString(args, "customer_name"); err != nil {
		return patch, err
	}
	if patch.CustomerEmail, err = optionalString(args, "customer_email"); err != nil {
		return patch, err
	}
	if patch.Status, err = optionalString(args, "status"); err != nil {
		return patch, err
	}
	return patch, nil
}

func deref[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
