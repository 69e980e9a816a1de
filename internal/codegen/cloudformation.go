package codegen

import (
	"fmt"
	"strings"

	"github.com/infrax/infra-engine/internal/types"
)

// CloudFormation is AWS-only; other providers are rejected at dispatch.

func awsCloudFormation(selection *types.ServiceSelection, environment, projectName string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf(`AWSTemplateFormatVersion: "2010-09-09"
Description: Infrastructure for %s (%s)

Parameters:
  Environment:
    Type: String
    Default: %s
  ProjectName:
    Type: String
    Default: %s

Resources:
`, projectName, environment, environment, projectName))

	names := nameCounter{}
	for _, svc := range selection.Services {
		logical := cfnLogicalID(names.next(svc.Category))
		switch svc.Category {
		case types.CategoryCompute:
			b.WriteString(fmt.Sprintf(`  %s:
    Type: AWS::EC2::Instance
    Properties:
      InstanceType: %s
      ImageId: "{{resolve:ssm:/aws/service/ami-amazon-linux-latest/al2023-ami-kernel-default-x86_64}}"
      Tags:
        - Key: Environment
          Value: !Ref Environment
        - Key: Project
          Value: !Ref ProjectName
`, logical, svc.Attributes["instance_type"]))
		case types.CategoryStorage:
			b.WriteString(fmt.Sprintf(`  %s:
    Type: AWS::S3::Bucket
    Properties:
      BucketEncryption:
        ServerSideEncryptionConfiguration:
          - ServerSideEncryptionByDefault:
              SSEAlgorithm: aws:kms
      PublicAccessBlockConfiguration:
        BlockPublicAcls: true
        BlockPublicPolicy: true
        IgnorePublicAcls: true
        RestrictPublicBuckets: true
`, logical))
		case types.CategoryDatabase:
			b.WriteString(fmt.Sprintf(`  %s:
    Type: AWS::RDS::DBInstance
    Properties:
      Engine: %s
      DBInstanceClass: %s
      AllocatedStorage: "20"
      StorageEncrypted: true
      BackupRetentionPeriod: 7
      MasterUsername: dbadmin
      ManageMasterUserPassword: true
`, logical, svc.Attributes["engine"], svc.Attributes["instance_class"]))
		case types.CategoryNetworking:
			b.WriteString(fmt.Sprintf(`  %s:
    Type: AWS::EC2::VPC
    Properties:
      CidrBlock: %s
      EnableDnsSupport: true
      EnableDnsHostnames: true
`, logical, svc.Attributes["cidr_block"]))
		case types.CategoryContainer:
			b.WriteString(fmt.Sprintf(`  %sCluster:
    Type: AWS::ECS::Cluster
  %s:
    Type: AWS::ECS::Service
    Properties:
      Cluster: !Ref %sCluster
      DesiredCount: 1
      LaunchType: FARGATE
`, logical, logical, logical))
		}
	}

	b.WriteString(`
Outputs:
  StackEnvironment:
    Value: !Ref Environment
`)

	return b.String()
}

// cfnLogicalID converts compute_1 into Compute1 (logical ids must be
// alphanumeric)
func cfnLogicalID(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}
