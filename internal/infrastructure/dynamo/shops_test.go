package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagedByScan_NoItemCap(t *testing.T) {
	input := managedByScan("shops", "u1")
	// Scan applies Limit before the filter, so a capped scan would return
	// empty for any manager whose shop is not the first item evaluated.
	assert.Nil(t, input.Limit)
	assert.Equal(t, "shops", *input.TableName)
	assert.Equal(t, "seller_id = :u OR buyer_id = :u", *input.FilterExpression)

	av, ok := input.ExpressionAttributeValues[":u"]
	require.True(t, ok)
	strVal, isStr := av.(*types.AttributeValueMemberS)
	require.True(t, isStr)
	assert.Equal(t, "u1", strVal.Value)
}
