package dynamo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET
// expression. Fields are emitted in sorted order so the expression is
// deterministic. nil values are written as NULL attributes.
func buildUpdateExpr(updates map[string]interface{}) (expr string, names map[string]string, values map[string]types.AttributeValue, err error) {
	if len(updates) == 0 {
		return "", nil, nil, fmt.Errorf("no fields to update")
	}
	fields := make([]string, 0, len(updates))
	for k := range updates {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	names = make(map[string]string, len(fields))
	values = make(map[string]types.AttributeValue, len(fields))
	parts := make([]string, 0, len(fields))
	for i, k := range fields {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		names[nameKey] = k
		v := updates[k]
		if v == nil {
			values[valueKey] = &types.AttributeValueMemberNULL{Value: true}
		} else {
			av, mErr := attributevalue.Marshal(v)
			if mErr != nil {
				return "", nil, nil, fmt.Errorf("marshal field %s: %w", k, mErr)
			}
			values[valueKey] = av
		}
		parts = append(parts, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	return "SET " + strings.Join(parts, ", "), names, values, nil
}
