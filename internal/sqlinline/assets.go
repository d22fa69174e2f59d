package sqlinline

const QInsertAsset = `--sql 6b3e91a8-47df-4c25-b0a9-8e12f67c3d54
insert into animation_assets(
  id,
  job_id,
  storage_key,
  mime,
  bytes,
  source_uri,
  created_at
) values (
  gen_random_uuid(),
  $1::uuid,
  $2::text,
  $3::text,
  $4::bigint,
  nullif($5::text, ''),
  now()
) returning id;
`

const QSelectAssetByJob = `--sql 92c07f5e-1db4-4a68-8f3c-65e0a9d214b7
select id, job_id, storage_key, mime, bytes, coalesce(source_uri, ''), created_at
from animation_assets
where job_id = $1::uuid
order by created_at desc
limit 1;
`
