package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogNumberQuery_KeysOnIndex(t *testing.T) {
	input := catalogNumberQuery("categories", 224)
	assert.Equal(t, "categories", *input.TableName)
	assert.Equal(t, "catalog_number-index", *input.IndexName)
	assert.Equal(t, "#a = :v", *input.KeyConditionExpression)
	assert.Equal(t, "catalog_number", input.ExpressionAttributeNames["#a"])
	// The match comes from the key condition, not a post-read filter, so
	// capping at one item is safe here.
	assert.Nil(t, input.FilterExpression)

	av, ok := input.ExpressionAttributeValues[":v"]
	require.True(t, ok)
	numVal, isNum := av.(*types.AttributeValueMemberN)
	require.True(t, isNum)
	assert.Equal(t, "224", numVal.Value)
}
